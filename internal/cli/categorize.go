package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mfabbri/lexanno/internal/pipeline"
)

var (
	catOutXML  string
	catOutJSON string
)

// categorizeCmd represents the categorize command
var categorizeCmd = &cobra.Command{
	Use:   "categorize <grouped.xml>",
	Short: "Label each sentence group with an argument category",
	Long: `Categorize reads an already-grouped document, classifies every
ArgumentGroup into one of the six argument categories (Historical, Textual,
Structural, Prudential, Doctrinal, Ethical), and attaches a Category
attribute to each container. A group the backend leaves unlabeled is an
error, never a silent gap.

Example:
  lexanno categorize case_grouped.xml
  lexanno categorize case_grouped.xml --xml case_annotated.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runCategorize,
}

func init() {
	rootCmd.AddCommand(categorizeCmd)

	categorizeCmd.Flags().StringVar(&catOutXML, "xml", "", "output XML path (default: <input>_annotated.xml)")
	categorizeCmd.Flags().StringVar(&catOutJSON, "json", "", "output JSON path (default: <input>_annotated.json)")
	addBackendFlags(categorizeCmd)
}

func runCategorize(cmd *cobra.Command, args []string) error {
	inPath := args[0]
	outXML, outJSON := deriveOutputs(inPath, catOutXML, catOutJSON, "annotated")

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	labels, err := p.Categorize(ctx, inPath, outXML, outJSON)
	if err != nil {
		return fmt.Errorf("categorize failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ %s: %d groups labeled\n", inPath, len(labels))
	fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outXML)
	fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outJSON)
	return nil
}
