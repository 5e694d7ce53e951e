package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"reviewscraper/pkg/config"
	"reviewscraper/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage reviewscraper configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (REVIEWSCRAPER_*)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with the default values",
	Long: `Create a configuration file holding every option with its default value.

The file is created as '.reviewscraper.yaml' in the current directory unless
a different path is given with --config.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources.

The news API secret is masked.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Run:   runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".reviewscraper.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	if err := config.DefaultConfig().Save(configPath); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the input and output sections")
	fmt.Println("2. Run 'reviewscraper config validate' to check the configuration")
	fmt.Println("3. Start crawling with 'reviewscraper crawl'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	displayCfg := *cfg
	if displayCfg.News.ClientSecret != "" {
		displayCfg.News.ClientSecret = "***MASKED***"
	}

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (REVIEWSCRAPER_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (searched in default locations)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	if _, err := os.Stat(cfg.Input.File); err != nil {
		ui.PrintWarning("Input file not found", cfg.Input.File)
	}

	ui.PrintSuccess("Configuration is valid")
	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Input: %s (%s = %s)\n", cfg.Input.File, cfg.Input.OwnerColumn, cfg.Input.OwnerValue)
	fmt.Printf("  Results: %s\n", cfg.ProgressPath())
	fmt.Printf("  Errors: %s\n", cfg.ErrorPath())
	fmt.Printf("  Flush every: %d, snapshot every: %d\n", cfg.Schedule.FlushEvery, cfg.Schedule.SnapshotEvery)
	fmt.Printf("  Delay: %s, wait timeout: %s\n", cfg.Schedule.ItemDelay, cfg.Browser.WaitTimeout)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
