package worker

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/mfabbri/lexanno/internal/pipeline"
)

// Annotator runs a full annotation pass over one document
type Annotator interface {
	Annotate(ctx context.Context, inPath string, outs pipeline.Outputs) error
}

// FileJob annotates a single XML file
type FileJob struct {
	Path      string
	OutDir    string
	Annotator Annotator
}

// Execute executes the annotation job
func (j *FileJob) Execute(ctx context.Context) Result {
	outs := pipeline.OutputsFor(j.Path, j.OutDir)
	err := j.Annotator.Annotate(ctx, j.Path, outs)
	return &FileResult{
		Path:    j.Path,
		Outputs: outs,
		Error:   err,
	}
}

// FileResult represents the result of one file's annotation
type FileResult struct {
	Path    string
	Outputs pipeline.Outputs
	Error   error
}

// GetError returns the error from the file result
func (r *FileResult) GetError() error {
	return r.Error
}

// BatchProcessor annotates every XML file in a dataset directory
type BatchProcessor struct {
	annotator   Annotator
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(annotator Annotator, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		annotator:   annotator,
		concurrency: concurrency,
	}
}

// ProcessDir annotates all *.xml files directly under dir, writing outputs
// into outDir. Results come back in input order; a failed file is reported
// in its result and never aborts the rest of the batch.
func (b *BatchProcessor) ProcessDir(ctx context.Context, dir, outDir string) ([]*FileResult, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.xml"))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no XML files found in %s", dir)
	}
	sort.Strings(paths)

	return b.ProcessFiles(ctx, paths, outDir), nil
}

// ProcessFiles annotates the given files concurrently
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string, outDir string) []*FileResult {
	pool := NewPool(b.concurrency)
	pool.Start()

	go func() {
		<-ctx.Done()
		pool.Shutdown()
	}()

	for _, path := range paths {
		pool.Submit(&FileJob{
			Path:      path,
			OutDir:    outDir,
			Annotator: b.annotator,
		})
	}

	results := pool.Wait()

	byPath := make(map[string]*FileResult, len(results))
	for _, r := range results {
		if fr, ok := r.(*FileResult); ok {
			byPath[fr.Path] = fr
		}
	}

	ordered := make([]*FileResult, 0, len(paths))
	for _, path := range paths {
		if fr, ok := byPath[path]; ok {
			ordered = append(ordered, fr)
		} else {
			ordered = append(ordered, &FileResult{Path: path, Error: ctx.Err()})
		}
	}
	return ordered
}
