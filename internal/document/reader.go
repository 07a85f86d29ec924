// Package document reads, annotates, and writes legal-argument XML documents.
// Sentence-bearing elements carry a stable ID attribute; grouping wraps them
// in ArgumentGroup containers and categorization attaches Category attributes.
package document

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/mfabbri/lexanno/internal/model"
)

// GroupTag is the container element wrapped around each sentence group
const GroupTag = "ArgumentGroup"

// idAttr is the identifier attribute on sentence and group elements
const idAttr = "ID"

// Load parses an XML document from disk, preserving all structure
func Load(path string) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.PreserveCData = true
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrMalformedDocument, path, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("%w: %s: no root element", model.ErrMalformedDocument, path)
	}
	return doc, nil
}

// Reader extracts sentence and group records from parsed documents
type Reader struct{}

// NewReader creates a document reader
func NewReader() *Reader {
	return &Reader{}
}

// Sentences extracts the ordered sentence records from a document. Elements
// qualify when they carry an ID attribute and are not group containers or the
// outer body wrapper. Fails when no sentences exist or identifiers collide.
func (d *Reader) Sentences(doc *etree.Document) ([]model.Sentence, error) {
	var sentences []model.Sentence
	seen := make(map[string]bool)

	var walk func(el *etree.Element) error
	walk = func(el *etree.Element) error {
		if isSentence(el) {
			id := el.SelectAttrValue(idAttr, "")
			if seen[id] {
				return fmt.Errorf("%w: duplicate sentence id %q", model.ErrMalformedDocument, id)
			}
			seen[id] = true
			sentences = append(sentences, model.Sentence{
				ID:    id,
				Text:  strings.TrimSpace(el.Text()),
				Order: len(sentences),
			})
		}
		for _, child := range el.ChildElements() {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(doc.Root()); err != nil {
		return nil, err
	}
	if len(sentences) == 0 {
		return nil, fmt.Errorf("%w: no sentence-bearing elements found", model.ErrMalformedDocument)
	}
	return sentences, nil
}

// Groups extracts the group records from an already-grouped document,
// aggregating member text in document order for categorization input.
func (d *Reader) Groups(doc *etree.Document) ([]model.Group, error) {
	var groups []model.Group
	seen := make(map[string]bool)

	for _, el := range doc.Root().FindElements("//" + GroupTag) {
		id := el.SelectAttrValue(idAttr, "")
		if id == "" {
			return nil, fmt.Errorf("%w: %s element without %s attribute", model.ErrMalformedDocument, GroupTag, idAttr)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate group id %q", model.ErrMalformedDocument, id)
		}
		seen[id] = true

		group := model.Group{GroupID: id}
		var texts []string
		for _, member := range el.ChildElements() {
			if !isSentence(member) {
				continue
			}
			group.SentenceIDs = append(group.SentenceIDs, member.SelectAttrValue(idAttr, ""))
			if text := strings.TrimSpace(member.Text()); text != "" {
				texts = append(texts, text)
			}
		}
		if len(group.SentenceIDs) == 0 {
			return nil, fmt.Errorf("%w: group %q has no member sentences", model.ErrMalformedDocument, id)
		}
		group.Text = strings.Join(texts, "\n")
		groups = append(groups, group)
	}

	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: no %s containers found (run grouping first)", model.ErrMalformedDocument, GroupTag)
	}
	return groups, nil
}

// ReadSentences loads a document and extracts its sentences in one step
func (d *Reader) ReadSentences(path string) (*etree.Document, []model.Sentence, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, nil, err
	}
	sentences, err := d.Sentences(doc)
	if err != nil {
		return nil, nil, err
	}
	return doc, sentences, nil
}

// ReadGroups loads a grouped document and extracts its groups in one step
func (d *Reader) ReadGroups(path string) (*etree.Document, []model.Group, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, nil, err
	}
	groups, err := d.Groups(doc)
	if err != nil {
		return nil, nil, err
	}
	return doc, groups, nil
}

// isSentence reports whether el is a sentence-bearing element: it carries an
// ID attribute and non-empty text, and is not a container or body wrapper
func isSentence(el *etree.Element) bool {
	if el.Tag == GroupTag || el.Tag == "body" {
		return false
	}
	if el.SelectAttr(idAttr) == nil {
		return false
	}
	return strings.TrimSpace(el.Text()) != ""
}
