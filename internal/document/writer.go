package document

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/beevik/etree"

	"github.com/mfabbri/lexanno/internal/model"
)

// Writer serializes an annotated document to an XML file plus a JSON summary.
// The pair is written atomically: both files appear, or neither does.
type Writer struct{}

// NewWriter creates an output writer
func NewWriter() *Writer {
	return &Writer{}
}

// WritePair writes the document to xmlPath and the summary to jsonPath.
// Both payloads are staged in temp files and renamed into place; if the JSON
// rename fails after the XML rename succeeded, the XML file is removed and
// the error reports an inconsistent pair.
func (w *Writer) WritePair(doc *etree.Document, summary any, xmlPath, jsonPath string) error {
	ensureDeclaration(doc)

	xmlData, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("serialize xml: %w", err)
	}

	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize json: %w", err)
	}
	jsonData = append(jsonData, '\n')

	xmlTmp := xmlPath + ".tmp"
	jsonTmp := jsonPath + ".tmp"

	if err := os.WriteFile(xmlTmp, xmlData, 0644); err != nil {
		return fmt.Errorf("write %s: %w", xmlTmp, err)
	}
	if err := os.WriteFile(jsonTmp, jsonData, 0644); err != nil {
		_ = os.Remove(xmlTmp)
		return fmt.Errorf("write %s: %w", jsonTmp, err)
	}

	if err := os.Rename(xmlTmp, xmlPath); err != nil {
		_ = os.Remove(xmlTmp)
		_ = os.Remove(jsonTmp)
		return fmt.Errorf("rename %s: %w", xmlPath, err)
	}
	if err := os.Rename(jsonTmp, jsonPath); err != nil {
		// XML landed but JSON did not; undo so the pair stays consistent.
		_ = os.Remove(xmlPath)
		_ = os.Remove(jsonTmp)
		return fmt.Errorf("%w: xml written but json rename failed: %v", model.ErrPartialOutput, err)
	}

	return nil
}

// GroupingSummary builds the JSON artifact for a grouping run
func GroupingSummary(groups []model.Group) model.GroupingSummary {
	summary := model.GroupingSummary{Groups: []model.GroupEntry{}}
	for _, g := range groups {
		summary.Groups = append(summary.Groups, model.GroupEntry{
			GroupID:     g.GroupID,
			SentenceIDs: g.SentenceIDs,
			Reason:      g.Reason,
		})
	}
	return summary
}

// CategorySummary builds the JSON artifact for a categorization run
func CategorySummary(labels []model.Label) model.CategorySummary {
	summary := model.CategorySummary{Groups: []model.CategoryEntry{}}
	for _, l := range labels {
		summary.Groups = append(summary.Groups, model.CategoryEntry{
			GroupID:  l.GroupID,
			Category: string(l.Category),
			Reason:   l.Reason,
		})
	}
	return summary
}

// ensureDeclaration prepends an XML declaration when the source had none
func ensureDeclaration(doc *etree.Document) {
	for _, tok := range doc.Child {
		if _, ok := tok.(*etree.ProcInst); ok {
			return
		}
	}
	doc.InsertChildAt(0, etree.NewProcInst("xml", `version="1.0" encoding="UTF-8"`))
}
