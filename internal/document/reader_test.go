package document

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mfabbri/lexanno/internal/model"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<document>
  <body>
    <prem ID="s1" TYPE="fact">The applicant was dismissed without notice.</prem>
    <prem ID="s2" TYPE="fact">No prior warning was issued to the applicant.</prem>
    <conc ID="s3">The dismissal therefore lacked legal basis.</conc>
  </body>
</document>
`

const groupedXML = `<?xml version="1.0" encoding="UTF-8"?>
<document>
  <body>
    <ArgumentGroup ID="g1">
      <prem ID="s1" TYPE="fact">The applicant was dismissed without notice.</prem>
      <prem ID="s2" TYPE="fact">No prior warning was issued to the applicant.</prem>
    </ArgumentGroup>
    <ArgumentGroup ID="g2">
      <conc ID="s3">The dismissal therefore lacked legal basis.</conc>
    </ArgumentGroup>
  </body>
</document>
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestReader_Sentences(t *testing.T) {
	path := writeTemp(t, "case.xml", sampleXML)

	reader := NewReader()
	_, sentences, err := reader.ReadSentences(path)
	if err != nil {
		t.Fatalf("ReadSentences failed: %v", err)
	}

	if len(sentences) != 3 {
		t.Fatalf("expected 3 sentences, got %d", len(sentences))
	}

	wantIDs := []string{"s1", "s2", "s3"}
	for i, s := range sentences {
		if s.ID != wantIDs[i] {
			t.Errorf("sentence %d: expected id %s, got %s", i, wantIDs[i], s.ID)
		}
		if s.Order != i {
			t.Errorf("sentence %s: expected order %d, got %d", s.ID, i, s.Order)
		}
		if s.Text == "" {
			t.Errorf("sentence %s: empty text", s.ID)
		}
	}

	if sentences[2].Text != "The dismissal therefore lacked legal basis." {
		t.Errorf("unexpected text for s3: %q", sentences[2].Text)
	}
}

func TestReader_Sentences_DuplicateID(t *testing.T) {
	path := writeTemp(t, "dup.xml", `<document>
  <prem ID="s1">First.</prem>
  <prem ID="s1">Second with colliding id.</prem>
</document>`)

	_, _, err := NewReader().ReadSentences(path)
	if !errors.Is(err, model.ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
}

func TestReader_Sentences_NoSentences(t *testing.T) {
	path := writeTemp(t, "empty.xml", `<document><body>No identified elements here.</body></document>`)

	_, _, err := NewReader().ReadSentences(path)
	if !errors.Is(err, model.ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
}

func TestReader_Sentences_MissingFile(t *testing.T) {
	_, _, err := NewReader().ReadSentences(filepath.Join(t.TempDir(), "nope.xml"))
	if !errors.Is(err, model.ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
}

func TestReader_Groups(t *testing.T) {
	path := writeTemp(t, "grouped.xml", groupedXML)

	_, groups, err := NewReader().ReadGroups(path)
	if err != nil {
		t.Fatalf("ReadGroups failed: %v", err)
	}

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	g1 := groups[0]
	if g1.GroupID != "g1" {
		t.Errorf("expected group id g1, got %s", g1.GroupID)
	}
	if len(g1.SentenceIDs) != 2 || g1.SentenceIDs[0] != "s1" || g1.SentenceIDs[1] != "s2" {
		t.Errorf("unexpected g1 members: %v", g1.SentenceIDs)
	}
	if g1.Text == "" {
		t.Error("expected aggregated text for g1")
	}

	if groups[1].GroupID != "g2" || len(groups[1].SentenceIDs) != 1 {
		t.Errorf("unexpected g2: %+v", groups[1])
	}
}

func TestReader_Groups_NotGrouped(t *testing.T) {
	path := writeTemp(t, "plain.xml", sampleXML)

	_, _, err := NewReader().ReadGroups(path)
	if !errors.Is(err, model.ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument for ungrouped input, got %v", err)
	}
}

func TestReader_Groups_DuplicateGroupID(t *testing.T) {
	path := writeTemp(t, "dupgroup.xml", `<document>
  <ArgumentGroup ID="g1"><prem ID="s1">One.</prem></ArgumentGroup>
  <ArgumentGroup ID="g1"><prem ID="s2">Two.</prem></ArgumentGroup>
</document>`)

	_, _, err := NewReader().ReadGroups(path)
	if !errors.Is(err, model.ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
}
