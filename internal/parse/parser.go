// Package parse decodes and validates backend responses. The backend's output
// format is not contractually guaranteed, so everything is checked: shape,
// referenced identifiers, and coverage of the input set. Nothing is silently
// dropped or defaulted.
package parse

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mfabbri/lexanno/internal/model"
)

// CleanResponse strips markdown code fences and surrounding noise from a raw
// backend response, returning the JSON payload candidate.
func CleanResponse(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		return strings.TrimSpace(s)
	}

	// Some models wrap JSON in prose; recover the outermost object.
	if start := strings.Index(s, "{"); start > 0 {
		if end := strings.LastIndex(s, "}"); end > start {
			return s[start : end+1]
		}
	}
	return s
}

// flexID decodes a group id that may arrive as a string or a bare number.
// A JSON null is rejected: every sentence must land in a real group.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return fmt.Errorf("null group id")
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*f = flexID(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexID(num.String())
		return nil
	}
	return fmt.Errorf("group id %s is neither string nor number", s)
}

// Grouping decodes a grouping response and validates it against the input
// sentences: every referenced id must exist, and every sentence must appear
// in exactly one group. Member lists are returned in document order.
func Grouping(raw string, sentences []model.Sentence) ([]model.Group, error) {
	var decoded struct {
		Groups []struct {
			GroupID     flexID   `json:"group_id"`
			SentenceIDs []string `json:"sentence_ids"`
			Reason      string   `json:"reason"`
		} `json:"groups"`
	}
	if err := decodeStrict(raw, &decoded); err != nil {
		return nil, err
	}
	if len(decoded.Groups) == 0 {
		return nil, fmt.Errorf("%w: response contains no groups: %s", model.ErrUnparsableResponse, excerpt(raw))
	}

	order := make(map[string]int, len(sentences))
	for _, s := range sentences {
		order[s.ID] = s.Order
	}

	assigned := make(map[string]string) // sentence id -> group id
	seenGroups := make(map[string]bool)
	var groups []model.Group

	for _, g := range decoded.Groups {
		id := string(g.GroupID)
		if id == "" {
			return nil, fmt.Errorf("%w: group with empty id", model.ErrUnparsableResponse)
		}
		if seenGroups[id] {
			return nil, fmt.Errorf("%w: group id %q appears twice", model.ErrUnknownReference, id)
		}
		seenGroups[id] = true

		for _, sid := range g.SentenceIDs {
			if _, ok := order[sid]; !ok {
				return nil, fmt.Errorf("%w: group %q references unknown sentence %q", model.ErrUnknownReference, id, sid)
			}
			if prev, ok := assigned[sid]; ok {
				return nil, fmt.Errorf("%w: sentence %q assigned to both %q and %q", model.ErrUnknownReference, sid, prev, id)
			}
			assigned[sid] = id
		}

		members := append([]string(nil), g.SentenceIDs...)
		sort.Slice(members, func(i, j int) bool { return order[members[i]] < order[members[j]] })
		groups = append(groups, model.Group{
			GroupID:     id,
			SentenceIDs: members,
			Reason:      strings.TrimSpace(g.Reason),
		})
	}

	for _, s := range sentences {
		if _, ok := assigned[s.ID]; !ok {
			return nil, fmt.Errorf("%w: sentence %q left ungrouped", model.ErrUnknownReference, s.ID)
		}
	}

	return groups, nil
}

// Categorization decodes a categorization response and validates it against
// the input groups: one label per group, no unknown group ids, categories
// restricted to the taxonomy. An uncategorized group is an error.
func Categorization(raw string, groups []model.Group) ([]model.Label, error) {
	var decoded struct {
		Labels []struct {
			GroupID  flexID `json:"group_id"`
			Category string `json:"category"`
			Reason   string `json:"reason"`
		} `json:"labels"`
	}
	if err := decodeStrict(raw, &decoded); err != nil {
		return nil, err
	}
	if len(decoded.Labels) == 0 {
		return nil, fmt.Errorf("%w: response contains no labels: %s", model.ErrUnparsableResponse, excerpt(raw))
	}

	known := make(map[string]bool, len(groups))
	for _, g := range groups {
		known[g.GroupID] = true
	}

	labeled := make(map[string]bool)
	var labels []model.Label

	for _, l := range decoded.Labels {
		id := string(l.GroupID)
		if !known[id] {
			return nil, fmt.Errorf("%w: label references unknown group %q", model.ErrUnknownReference, id)
		}
		if labeled[id] {
			return nil, fmt.Errorf("%w: group %q labeled twice", model.ErrUnknownReference, id)
		}
		labeled[id] = true

		category, err := normalizeCategory(l.Category)
		if err != nil {
			return nil, fmt.Errorf("%w: group %q: %v", model.ErrUnknownReference, id, err)
		}
		labels = append(labels, model.Label{
			GroupID:  id,
			Category: category,
			Reason:   strings.TrimSpace(l.Reason),
		})
	}

	for _, g := range groups {
		if !labeled[g.GroupID] {
			return nil, fmt.Errorf("%w: group %q left uncategorized", model.ErrUnknownReference, g.GroupID)
		}
	}

	return labels, nil
}

// normalizeCategory maps a response category onto the taxonomy, tolerating
// the "Historical Arguments" long form and the dataset's abbreviations.
func normalizeCategory(s string) (model.Category, error) {
	name := strings.TrimSpace(s)
	name = strings.TrimSuffix(name, " Arguments")

	if c := model.Category(name); c.Valid() {
		return c, nil
	}
	if c, ok := model.CategoryFromAbbrev(name); ok {
		return c, nil
	}
	return "", fmt.Errorf("category %q is not in the taxonomy", s)
}

// decodeStrict cleans and decodes a raw response into v
func decodeStrict(raw string, v any) error {
	cleaned := CleanResponse(raw)
	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v: %s", model.ErrUnparsableResponse, err, excerpt(raw))
	}
	return nil
}

// excerpt returns a bounded slice of the raw response for error reporting
func excerpt(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) > 160 {
		s = s[:160] + "..."
	}
	if s == "" {
		s = "(empty response)"
	}
	return s
}
