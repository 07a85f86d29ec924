package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mfabbri/lexanno/internal/pipeline"
)

var annotateOutDir string

// annotateCmd represents the annotate command
var annotateCmd = &cobra.Command{
	Use:   "annotate <file.xml>",
	Short: "Run grouping and categorization in one pass",
	Long: `Annotate runs the full pipeline: group the document's sentences, then
categorize the resulting groups. Four files are produced in the output
directory: the grouped XML/JSON pair and the annotated XML/JSON pair.

Example:
  lexanno annotate case.xml
  lexanno annotate case.xml --output-dir ./annotated --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)

	annotateCmd.Flags().StringVar(&annotateOutDir, "output-dir", ".", "output directory")
	addBackendFlags(annotateCmd)
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	inPath := args[0]

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(annotateOutDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	outs := pipeline.OutputsFor(inPath, annotateOutDir)
	if err := p.Annotate(ctx, inPath, outs); err != nil {
		return fmt.Errorf("annotate failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ %s annotated\n", filepath.Base(inPath))
	fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outs.AnnotatedXML)
	fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outs.AnnotatedJSON)
	return nil
}
