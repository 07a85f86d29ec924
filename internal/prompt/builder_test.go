package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/mfabbri/lexanno/internal/model"
)

func TestBuilder_Grouping(t *testing.T) {
	b := NewBuilder(8, 0)
	sentences := []model.Sentence{
		{ID: "s1", Text: "The statute is unambiguous.", Order: 0},
		{ID: "s2", Text: "Precedent controls here.", Order: 1},
	}

	p, err := b.Grouping(sentences)
	if err != nil {
		t.Fatalf("Grouping failed: %v", err)
	}
	if !strings.Contains(p.System, "8 sentences per group") {
		t.Errorf("system prompt should carry the group size limit: %s", p.System)
	}
	if !strings.Contains(p.System, `"group_id"`) {
		t.Error("system prompt should spell out the JSON contract")
	}
	for _, want := range []string{`"s1"`, `"s2"`, "The statute is unambiguous."} {
		if !strings.Contains(p.User, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}
}

func TestBuilder_GroupingDefaultGroupSize(t *testing.T) {
	b := NewBuilder(0, 0)

	p, err := b.Grouping([]model.Sentence{{ID: "s1", Text: "One."}})
	if err != nil {
		t.Fatalf("Grouping failed: %v", err)
	}
	if !strings.Contains(p.System, "8 sentences per group") {
		t.Error("expected default group size of 8")
	}
}

func TestBuilder_Categorization(t *testing.T) {
	b := NewBuilder(8, 0)
	groups := []model.Group{
		{GroupID: "g1", SentenceIDs: []string{"s1", "s2"}, Text: "The statute is unambiguous.\nPrecedent controls here."},
		{GroupID: "g2", SentenceIDs: []string{"s3"}, Text: "Fairness demands this outcome."},
	}

	p, err := b.Categorization(groups)
	if err != nil {
		t.Fatalf("Categorization failed: %v", err)
	}
	for _, c := range model.Categories {
		if !strings.Contains(p.System, string(c)+":") {
			t.Errorf("system prompt missing category definition for %s", c)
		}
	}
	if !strings.Contains(p.User, "[g1]") || !strings.Contains(p.User, "[g2]") {
		t.Errorf("user prompt should tag each group with its id: %s", p.User)
	}
	if !strings.Contains(p.User, "Fairness demands this outcome.") {
		t.Error("user prompt missing group text")
	}
}

func TestBuilder_BatchTooLarge(t *testing.T) {
	b := NewBuilder(8, 50)
	sentences := []model.Sentence{
		{ID: "s1", Text: strings.Repeat("The court has repeatedly held that ", 40)},
	}

	_, err := b.Grouping(sentences)
	if !errors.Is(err, model.ErrBatchTooLarge) {
		t.Fatalf("expected ErrBatchTooLarge, got %v", err)
	}
}

func TestBuilder_NoBudgetMeansNoLimit(t *testing.T) {
	b := NewBuilder(8, 0)
	sentences := []model.Sentence{
		{ID: "s1", Text: strings.Repeat("word ", 10000)},
	}

	if _, err := b.Grouping(sentences); err != nil {
		t.Fatalf("zero budget should disable the check, got %v", err)
	}
}

func TestPrompt_EstimatedTokens(t *testing.T) {
	p := Prompt{System: strings.Repeat("a", 200), User: strings.Repeat("b", 200)}
	if got := p.EstimatedTokens(); got != 100 {
		t.Errorf("EstimatedTokens() = %d, want 100", got)
	}
}
