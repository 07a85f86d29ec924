package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfabbri/lexanno/internal/pipeline"
	"github.com/mfabbri/lexanno/internal/worker"
)

var (
	concurrency  int
	batchOutDir  string
	batchTimeout time.Duration
	requestRate  float64
	requestBurst int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Annotate every XML file in a dataset directory in parallel",
	Long: `Batch runs the full annotation pipeline over all *.xml files in a
directory:
- Process files in parallel with a configurable worker count
- Backend calls across all workers share one rate limiter
- One file's failure never aborts the rest of the batch

Example:
  lexanno batch ./dataset
  lexanno batch ./dataset --concurrency 8 --output-dir ./annotated
  lexanno batch ./dataset --rate 1 --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&batchOutDir, "output-dir", "./lexanno-annotated", "output directory")
	batchCmd.Flags().DurationVar(&batchTimeout, "batch-timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().Float64Var(&requestRate, "rate", 2, "backend requests per second across all workers")
	batchCmd.Flags().IntVar(&requestBurst, "burst", 5, "backend request burst size")
	addBackendFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input dir:    %s\n", dir)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", batchOutDir)
	fmt.Fprintf(os.Stderr, "  Backend:      %s/%s\n", cfg.Backend.Provider, cfg.Backend.Model)
	fmt.Fprintf(os.Stderr, "  Rate limit:   %.1f req/s (burst %d)\n", cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.BurstSize)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(batchOutDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	limiter := worker.NewLimiter(cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.BurstSize)
	for name, rps := range cfg.Concurrency.ProviderRates {
		limiter.SetProviderRate(name, rps, cfg.Concurrency.BurstSize)
	}
	p, err := pipeline.New(cfg, pipeline.WithLimiter(limiter))
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)
	results, err := processor.ProcessDir(ctx, dir, batchOutDir)
	if err != nil {
		return fmt.Errorf("process directory: %w", err)
	}

	successCount := 0
	failureCount := 0
	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}
		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s → %s\n", result.Path, result.Outputs.AnnotatedXML)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d files\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 {
		return fmt.Errorf("%d of %d files failed", failureCount, len(results))
	}
	return nil
}
