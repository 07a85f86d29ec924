package model

// Sentence represents a single sentence-bearing element extracted from a
// legal-argument XML document
type Sentence struct {
	ID    string `json:"id"`    // Stable identifier from the ID attribute
	Text  string `json:"text"`  // Raw sentence text
	Order int    `json:"order"` // 0-based document order
}

// Group represents a semantic cluster of sentences produced by the backend
type Group struct {
	GroupID     string   `json:"group_id"`
	SentenceIDs []string `json:"sentence_ids"` // Members in document order
	Reason      string   `json:"reason,omitempty"`
	Text        string   `json:"-"` // Aggregated member text (categorization input)
}

// Label represents a category assignment for one group
type Label struct {
	GroupID  string   `json:"group_id"`
	Category Category `json:"category"`
	Reason   string   `json:"reason,omitempty"`
}

// Category is one of the six constitutional-argument modalities
type Category string

const (
	CategoryHistorical Category = "Historical"
	CategoryTextual    Category = "Textual"
	CategoryStructural Category = "Structural"
	CategoryPrudential Category = "Prudential"
	CategoryDoctrinal  Category = "Doctrinal"
	CategoryEthical    Category = "Ethical"
)

// Categories lists the taxonomy in its canonical order
var Categories = []Category{
	CategoryHistorical,
	CategoryTextual,
	CategoryStructural,
	CategoryPrudential,
	CategoryDoctrinal,
	CategoryEthical,
}

// abbreviations used as XML attribute values, matching the annotated dataset
var categoryAbbrev = map[Category]string{
	CategoryHistorical: "HIS",
	CategoryTextual:    "TXT",
	CategoryStructural: "STRUCT",
	CategoryPrudential: "PRUD",
	CategoryDoctrinal:  "DOCT",
	CategoryEthical:    "ETH",
}

// Valid reports whether c is part of the taxonomy
func (c Category) Valid() bool {
	_, ok := categoryAbbrev[c]
	return ok
}

// Abbrev returns the short code stored in the XML Category attribute
func (c Category) Abbrev() string {
	if abbrev, ok := categoryAbbrev[c]; ok {
		return abbrev
	}
	return string(c)
}

// CategoryFromAbbrev resolves a short code back to its full category name
func CategoryFromAbbrev(abbrev string) (Category, bool) {
	for cat, a := range categoryAbbrev {
		if a == abbrev {
			return cat, true
		}
	}
	return "", false
}

// GroupingSummary is the JSON artifact written next to a grouped XML file
type GroupingSummary struct {
	Groups []GroupEntry `json:"groups"`
}

// GroupEntry is one group in a GroupingSummary
type GroupEntry struct {
	GroupID     string   `json:"group_id"`
	SentenceIDs []string `json:"sentence_ids"`
	Reason      string   `json:"reason,omitempty"`
}

// CategorySummary is the JSON artifact written next to a categorized XML file
type CategorySummary struct {
	Groups []CategoryEntry `json:"groups"`
}

// CategoryEntry is one labeled group in a CategorySummary
type CategoryEntry struct {
	GroupID  string `json:"group_id"`
	Category string `json:"category"`
	Reason   string `json:"reason,omitempty"`
}
