package document

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/mfabbri/lexanno/internal/model"
)

// Merger applies parsed annotation records onto a document tree. Merges are
// pure structural additions: no node, attribute, or text outside the inserted
// containers and Category attributes is touched.
type Merger struct{}

// NewMerger creates a document merger
func NewMerger() *Merger {
	return &Merger{}
}

// ApplyGroups wraps each group's member sentences in an ArgumentGroup
// container inserted at the first member's position, with members in their
// original document order. Members of one group must share a parent element.
func (m *Merger) ApplyGroups(doc *etree.Document, groups []model.Group) error {
	index := sentenceIndex(doc)

	for _, group := range groups {
		var members []*etree.Element
		var parent *etree.Element

		for _, id := range group.SentenceIDs {
			el, ok := index[id]
			if !ok {
				return fmt.Errorf("%w: group %q references sentence %q not present in document", model.ErrMergeConflict, group.GroupID, id)
			}
			if parent == nil {
				parent = el.Parent()
			} else if el.Parent() != parent {
				return fmt.Errorf("%w: group %q spans sentences with different parent elements", model.ErrMergeConflict, group.GroupID)
			}
			members = append(members, el)
		}
		if parent == nil {
			return fmt.Errorf("%w: group %q has no members", model.ErrMergeConflict, group.GroupID)
		}

		// Order members as they appear in the document, not as listed by the
		// backend.
		sortByIndex(members)

		container := etree.NewElement(GroupTag)
		container.CreateAttr(idAttr, group.GroupID)
		parent.InsertChildAt(members[0].Index(), container)
		for _, member := range members {
			parent.RemoveChild(member)
			container.AddChild(member)
		}
	}

	return nil
}

// ApplyCategories attaches a Category attribute to each labeled group
// container, using the dataset's abbreviated category codes.
func (m *Merger) ApplyCategories(doc *etree.Document, labels []model.Label) error {
	containers := make(map[string]*etree.Element)
	for _, el := range doc.Root().FindElements("//" + GroupTag) {
		containers[el.SelectAttrValue(idAttr, "")] = el
	}

	for _, label := range labels {
		el, ok := containers[label.GroupID]
		if !ok {
			return fmt.Errorf("%w: no %s container with id %q", model.ErrMergeConflict, GroupTag, label.GroupID)
		}
		el.CreateAttr("Category", label.Category.Abbrev())
	}

	return nil
}

// sentenceIndex maps sentence ids to their elements
func sentenceIndex(doc *etree.Document) map[string]*etree.Element {
	index := make(map[string]*etree.Element)

	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		if isSentence(el) {
			index[el.SelectAttrValue(idAttr, "")] = el
		}
		for _, child := range el.ChildElements() {
			walk(child)
		}
	}
	walk(doc.Root())

	return index
}

// sortByIndex sorts sibling elements by their position within the parent
func sortByIndex(els []*etree.Element) {
	for i := 1; i < len(els); i++ {
		for j := i; j > 0 && els[j].Index() < els[j-1].Index(); j-- {
			els[j], els[j-1] = els[j-1], els[j]
		}
	}
}
