package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"reviewscraper/internal/report"
	"reviewscraper/pkg/checkpoint"
	"reviewscraper/pkg/storage"
	"reviewscraper/pkg/targets"
	"reviewscraper/pkg/ui"
)

var (
	// Status command flags
	statusInput      string
	statusOwner      string
	statusOutput     string
	showSuspicious   bool
	similarityCutoff float64
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show crawl progress from the progress files",
	Long: `Summarise the progress and error files against the input list: how many
companies are done, how many remain, and which kinds of errors were recorded.

With --suspicious the command also lists results whose matched company name
differs noticeably from the searched name. The crawler always takes the first
search candidate, so these rows are worth a manual look.`,
	Example: `  # Progress of the default crawl
  reviewscraper status

  # Also list doubtful matches
  reviewscraper status --suspicious --threshold 0.8`,
	Args: cobra.NoArgs,
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusInput, "input", "i", "", "company list CSV")
	statusCmd.Flags().StringVar(&statusOwner, "owner", "", "owner tag to compare against")
	statusCmd.Flags().StringVarP(&statusOutput, "output-dir", "o", "", "directory holding the progress files")
	statusCmd.Flags().BoolVar(&showSuspicious, "suspicious", false, "list results whose matched name differs from the query")
	statusCmd.Flags().Float64Var(&similarityCutoff, "threshold", 0.85, "similarity below which a match is listed")
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig(map[string]interface{}{
		"input":      statusInput,
		"owner":      statusOwner,
		"output-dir": statusOutput,
	})

	mgr, err := storage.NewManager(cfg.Output.Directory)
	if err != nil {
		ui.PrintError("Failed to open output directory", err.Error())
		os.Exit(1)
	}

	store := checkpoint.NewStore(mgr, cfg.Output.ProgressFile, cfg.Output.ErrorFile)
	results, failures, err := store.Load()
	if err != nil {
		ui.PrintError("Failed to read progress files", err.Error())
		os.Exit(1)
	}

	items, itemsErr := targets.Load(cfg.Input.File, targetOptions(cfg))
	if itemsErr != nil {
		ui.PrintWarning("Company list unavailable, remaining count is unknown", itemsErr.Error())
	}

	snapshots, err := store.Snapshots()
	if err != nil {
		ui.PrintWarning("Failed to list snapshots", err.Error())
	}

	ui.PrintInfo("Results", cfg.ProgressPath())
	ui.PrintInfo("Errors", cfg.ErrorPath())
	fmt.Println()

	status := report.Build(items, results, failures, snapshots)
	if itemsErr != nil {
		status = report.BuildWithoutTargets(results, failures, snapshots)
	}
	report.WriteStatus(os.Stdout, status)

	if showSuspicious {
		fmt.Println()
		report.WriteMismatches(os.Stdout, report.Suspicious(results, similarityCutoff))
	}
}
