package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"reviewscraper/pkg/config"
	"reviewscraper/pkg/logger"
	"reviewscraper/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reviewscraper",
	Short: "Collect company review statistics and news articles",
	Long: `reviewscraper collects review statistics for a list of companies.

The crawl command drives a headless Chrome against the review site, takes the
first search candidate for every company and records its rating breakdown.
Progress is written to CSV every few companies so an interrupted run resumes
where it stopped.

The news command queries the news search API for the same company list and
writes every article to a timestamped CSV.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			logLevel = "error"
		} else if verbose {
			logLevel = "debug"
		}

		if !quiet && cmd.Name() != "version" && cmd.Name() != "help" && ui.IsTerminal(os.Stdout) {
			ui.PrintLogo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.reviewscraper.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show debug logs")

	rootCmd.SetVersionTemplate(`reviewscraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig loads the configuration and initializes the global logger.
// Failures are printed and end the process.
func loadConfig(flags map[string]interface{}) *config.Config {
	if flags == nil {
		flags = make(map[string]interface{})
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	return cfg
}
