// Package prompt serializes sentence and group batches into backend
// instructions with a strict JSON response contract.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mfabbri/lexanno/internal/model"
)

// Prompt is a system/user message pair ready for the completion backend
type Prompt struct {
	System string
	User   string
}

// EstimatedTokens approximates the token count of the prompt. Four characters
// per token is the usual rule of thumb for English text.
func (p Prompt) EstimatedTokens() int {
	return (len(p.System) + len(p.User)) / 4
}

// Builder constructs grouping and categorization prompts under a token budget
type Builder struct {
	maxGroupSize int
	maxTokens    int
}

// NewBuilder creates a prompt builder. maxTokens caps the estimated prompt
// size; a batch that does not fit fails rather than being truncated.
func NewBuilder(maxGroupSize, maxTokens int) *Builder {
	if maxGroupSize <= 0 {
		maxGroupSize = 8
	}
	return &Builder{
		maxGroupSize: maxGroupSize,
		maxTokens:    maxTokens,
	}
}

// Grouping builds the semantic-grouping prompt for a sentence batch
func (b *Builder) Grouping(sentences []model.Sentence) (Prompt, error) {
	type item struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}
	items := make([]item, 0, len(sentences))
	for _, s := range sentences {
		items = append(items, item{ID: s.ID, Text: s.Text})
	}
	batch, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return Prompt{}, fmt.Errorf("serialize sentence batch: %w", err)
	}

	p := Prompt{
		System: fmt.Sprintf(groupingSystem, b.maxGroupSize),
		User: fmt.Sprintf("Here are legal sentences annotated with IDs:\n\n%s\n\n"+
			"Group them following the guidelines exactly. Every sentence ID must appear "+
			"in exactly one group. Provide a clear reason for each group.", batch),
	}
	return b.check(p, len(sentences))
}

// Categorization builds the classification prompt for a group batch
func (b *Builder) Categorization(groups []model.Group) (Prompt, error) {
	var sb strings.Builder
	for _, g := range groups {
		fmt.Fprintf(&sb, "[%s]\n%s\n\n", g.GroupID, g.Text)
	}

	p := Prompt{
		System: categorizationSystem,
		User: fmt.Sprintf("The following are grouped supporting arguments, each preceded by its group ID:\n\n%s"+
			"Classify every group into the most relevant category. Return exactly one label per "+
			"group ID, strictly as JSON in the required format.", sb.String()),
	}
	return b.check(p, len(groups))
}

// check enforces the token budget on a built prompt
func (b *Builder) check(p Prompt, batchSize int) (Prompt, error) {
	if b.maxTokens > 0 && p.EstimatedTokens() > b.maxTokens {
		return Prompt{}, fmt.Errorf("%w: batch of %d needs ~%d tokens, budget is %d",
			model.ErrBatchTooLarge, batchSize, p.EstimatedTokens(), b.maxTokens)
	}
	return p, nil
}

const groupingSystem = `You are an assistant skilled in the structural and semantic analysis of legal sentences. You will receive sentences annotated with an ID. Your task is to group the sentences that share a common semantic logic or address the same topic.

Follow these strict guidelines:
1. Do not exceed %d sentences per group.
2. Group by semantic meaning. Ignore the IDs and order; base the grouping purely on the meaning of each sentence.
3. Assign every sentence to exactly one group. A sentence with no thematic connection to any other gets a group of its own.
4. Provide a clear reason for each group, focusing on the shared logic or theme.
5. Use short string group ids: "g1", "g2", and so on.

Format the response strictly as JSON, with no other text:
{
  "groups": [
    {
      "group_id": "g1",
      "sentence_ids": ["ID1", "ID2", "ID3"],
      "reason": "Explanation for why these sentences are grouped together."
    }
  ]
}`

const categorizationSystem = `You are an expert assistant in analyzing legal texts. Your task is to classify each supporting argument into one of the following categories:

- Historical: interpretation based on the original intentions of the framers and ratifiers, reconstructing the historical context and debates of the time (e.g. references to preparatory work on the law, legislative debates).
- Textual: based exclusively on the literal meaning of the words actually present in the legal provision.
- Structural: based on the analysis of the overall normative system and related provisions, treating each provision as part of an integrated and coherent whole.
- Prudential: based on an assessment of the practical pros and cons of a legal decision, weighing potential benefits against possible drawbacks and social consequences.
- Doctrinal: based on the use of precedents, meaning decisions made in similar previous cases by lower courts or the Supreme Court.
- Ethical: based on general moral principles and shared societal values, aiming to align judicial decisions with the community's sense of justice.

Every group must receive exactly one category from this list.

Format the response strictly as JSON, with no other text:
{
  "labels": [
    {
      "group_id": "g1",
      "category": "Doctrinal",
      "reason": "Explanation for the classification."
    }
  ]
}`
