package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mfabbri/lexanno/internal/pipeline"
)

var (
	groupOutXML  string
	groupOutJSON string
)

// groupCmd represents the group command
var groupCmd = &cobra.Command{
	Use:   "group <file.xml>",
	Short: "Partition a document's sentences into semantic groups",
	Long: `Group sends a document's sentences to the completion backend and wraps
each returned group's sentences in an ArgumentGroup container, preserving all
unrelated structure. A JSON summary of the partition is written alongside.

Example:
  lexanno group case.xml
  lexanno group case.xml --xml case_grouped.xml --json case_grouped.json
  lexanno group case.xml --provider anthropic --model claude-3-5-haiku-20241022`,
	Args: cobra.ExactArgs(1),
	RunE: runGroup,
}

func init() {
	rootCmd.AddCommand(groupCmd)

	groupCmd.Flags().StringVar(&groupOutXML, "xml", "", "output XML path (default: <input>_grouped.xml)")
	groupCmd.Flags().StringVar(&groupOutJSON, "json", "", "output JSON path (default: <input>_grouped.json)")
	addBackendFlags(groupCmd)
}

func runGroup(cmd *cobra.Command, args []string) error {
	inPath := args[0]
	outXML, outJSON := deriveOutputs(inPath, groupOutXML, groupOutJSON, "grouped")

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

	groups, err := p.Group(ctx, inPath, outXML, outJSON)
	if err != nil {
		return fmt.Errorf("group failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ %s: %d groups\n", inPath, len(groups))
	fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outXML)
	fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outJSON)
	return nil
}
