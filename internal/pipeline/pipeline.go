// Package pipeline orchestrates the annotation passes: read XML, build a
// prompt, call the completion backend, parse and validate the response, merge
// the annotations back into the tree, and write the XML/JSON output pair.
// Each run is a single linear pass; every stage fails fast.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mfabbri/lexanno/internal/cache"
	"github.com/mfabbri/lexanno/internal/document"
	"github.com/mfabbri/lexanno/internal/llm"
	"github.com/mfabbri/lexanno/internal/model"
	"github.com/mfabbri/lexanno/internal/parse"
	"github.com/mfabbri/lexanno/internal/prompt"
)

// Pipeline runs the grouping and categorization passes over one document at
// a time. A Pipeline holds no per-run state and is safe for concurrent use;
// each run owns its document tree exclusively.
type Pipeline struct {
	reader  *document.Reader
	merger  *document.Merger
	writer  *document.Writer
	builder *prompt.Builder
	client  *llm.Client
	config  *model.Config
}

// Option customizes a Pipeline
type Option func(*options)

type options struct {
	limiter llm.RateWaiter
}

// WithLimiter shares a rate limiter across pipelines (used by batch runs)
func WithLimiter(l llm.RateWaiter) Option {
	return func(o *options) {
		o.limiter = l
	}
}

// New creates a pipeline from an explicit configuration. Provider
// construction fails fast on a missing credential.
func New(cfg *model.Config, opts ...Option) (*Pipeline, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	provider, err := llm.NewProvider(cfg.Backend)
	if err != nil {
		return nil, err
	}

	var clientOpts []llm.ClientOption
	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			dir = defaultCacheDir()
		}
		clientOpts = append(clientOpts, llm.WithCache(
			cache.NewLayeredCache(cfg.Cache.TTL, dir, cfg.Cache.TTL), cfg.Cache.TTL))
	}
	if o.limiter != nil {
		clientOpts = append(clientOpts, llm.WithLimiter(o.limiter))
	}

	return &Pipeline{
		reader:  document.NewReader(),
		merger:  document.NewMerger(),
		writer:  document.NewWriter(),
		builder: prompt.NewBuilder(cfg.Prompt.MaxGroupSize, cfg.Backend.MaxTokens),
		client:  llm.NewClient(provider, cfg.Backend, clientOpts...),
		config:  cfg,
	}, nil
}

// Group runs the grouping pass: partition the document's sentences into
// semantic groups and write the grouped XML plus its JSON summary.
func (p *Pipeline) Group(ctx context.Context, inPath, outXML, outJSON string) ([]model.Group, error) {
	doc, sentences, err := p.reader.ReadSentences(inPath)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	p.progress("Read %d sentences from %s", len(sentences), inPath)

	pr, err := p.builder.Grouping(sentences)
	if err != nil {
		return nil, fmt.Errorf("build grouping prompt: %w", err)
	}

	resp, err := p.client.Complete(ctx, llm.CompletionRequest{
		System:      pr.System,
		User:        pr.User,
		Model:       p.config.Backend.Model,
		MaxTokens:   p.config.Backend.MaxTokens,
		Temperature: p.config.Backend.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("grouping completion: %w", err)
	}
	p.progress("Backend %s returned %d tokens", resp.Model, resp.TokensUsed)

	groups, err := parse.Grouping(resp.Text, sentences)
	if err != nil {
		return nil, fmt.Errorf("parse grouping response: %w", err)
	}
	p.progress("Parsed %d groups", len(groups))

	if err := p.merger.ApplyGroups(doc, groups); err != nil {
		return nil, fmt.Errorf("merge groups: %w", err)
	}

	if err := p.writer.WritePair(doc, document.GroupingSummary(groups), outXML, outJSON); err != nil {
		return nil, fmt.Errorf("write outputs: %w", err)
	}
	p.progress("Wrote %s and %s", outXML, outJSON)

	return groups, nil
}

// Categorize runs the categorization pass on an already-grouped document:
// label each group with one of the six argument categories and write the
// categorized XML plus its JSON summary.
func (p *Pipeline) Categorize(ctx context.Context, inPath, outXML, outJSON string) ([]model.Label, error) {
	doc, groups, err := p.reader.ReadGroups(inPath)
	if err != nil {
		return nil, fmt.Errorf("read grouped document: %w", err)
	}
	p.progress("Read %d groups from %s", len(groups), inPath)

	pr, err := p.builder.Categorization(groups)
	if err != nil {
		return nil, fmt.Errorf("build categorization prompt: %w", err)
	}

	resp, err := p.client.Complete(ctx, llm.CompletionRequest{
		System:      pr.System,
		User:        pr.User,
		Model:       p.config.Backend.Model,
		MaxTokens:   p.config.Backend.MaxTokens,
		Temperature: p.config.Backend.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("categorization completion: %w", err)
	}
	p.progress("Backend %s returned %d tokens", resp.Model, resp.TokensUsed)

	labels, err := parse.Categorization(resp.Text, groups)
	if err != nil {
		return nil, fmt.Errorf("parse categorization response: %w", err)
	}
	p.progress("Parsed %d labels", len(labels))

	if err := p.merger.ApplyCategories(doc, labels); err != nil {
		return nil, fmt.Errorf("merge categories: %w", err)
	}

	if err := p.writer.WritePair(doc, document.CategorySummary(labels), outXML, outJSON); err != nil {
		return nil, fmt.Errorf("write outputs: %w", err)
	}
	p.progress("Wrote %s and %s", outXML, outJSON)

	return labels, nil
}

// Outputs names the files produced by a full annotation run
type Outputs struct {
	GroupedXML    string
	GroupedJSON   string
	AnnotatedXML  string
	AnnotatedJSON string
}

// OutputsFor derives output paths for inPath under outDir
func OutputsFor(inPath, outDir string) Outputs {
	base := strings.TrimSuffix(filepath.Base(inPath), filepath.Ext(inPath))
	return Outputs{
		GroupedXML:    filepath.Join(outDir, base+"_grouped.xml"),
		GroupedJSON:   filepath.Join(outDir, base+"_grouped.json"),
		AnnotatedXML:  filepath.Join(outDir, base+"_annotated.xml"),
		AnnotatedJSON: filepath.Join(outDir, base+"_annotated.json"),
	}
}

// Annotate runs both passes: group inPath, then categorize the grouped file
func (p *Pipeline) Annotate(ctx context.Context, inPath string, outs Outputs) error {
	if _, err := p.Group(ctx, inPath, outs.GroupedXML, outs.GroupedJSON); err != nil {
		return err
	}
	if _, err := p.Categorize(ctx, outs.GroupedXML, outs.AnnotatedXML, outs.AnnotatedJSON); err != nil {
		return err
	}
	return nil
}

// progress prints a verbose progress line to stderr
func (p *Pipeline) progress(format string, args ...any) {
	if p.config.Output.Verbose {
		fmt.Fprintf(os.Stderr, "⚙️  "+format+"\n", args...)
	}
}

// defaultCacheDir resolves the completion cache location
func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lexanno-cache"
	}
	return filepath.Join(home, ".lexanno", "cache")
}
