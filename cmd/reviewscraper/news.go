package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"reviewscraper/pkg/auth"
	"reviewscraper/pkg/logger"
	"reviewscraper/pkg/news"
	"reviewscraper/pkg/ratelimit"
	"reviewscraper/pkg/storage"
	"reviewscraper/pkg/targets"
	"reviewscraper/pkg/ui"
)

var (
	// News command flags
	newsAccount string
	newsInput   string
	newsOwner   string
	newsOutput  string
)

// newsCmd represents the news command
var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Collect news articles for every company in the input list",
	Long: `Query the news search API once per company and write every article to
one timestamped CSV.

API credentials are taken from:
  - REVIEWSCRAPER_NAVER_CLIENT_ID / REVIEWSCRAPER_NAVER_CLIENT_SECRET
  - the news section of the configuration file
  - an account stored with 'reviewscraper auth login'

Failed requests are logged and the company is skipped. When no article was
collected no file is written.`,
	Example: `  # Use the default stored account
  reviewscraper news

  # Use a specific stored account and output directory
  reviewscraper news --account work --output-dir ./out`,
	Args: cobra.NoArgs,
	Run:  runNews,
}

func init() {
	rootCmd.AddCommand(newsCmd)

	newsCmd.Flags().StringVarP(&newsAccount, "account", "a", "", "use specific stored account")
	newsCmd.Flags().StringVarP(&newsInput, "input", "i", "", "company list CSV")
	newsCmd.Flags().StringVar(&newsOwner, "owner", "", "only query rows with this owner tag")
	newsCmd.Flags().StringVarP(&newsOutput, "output-dir", "o", "", "directory for the article CSV")
}

func runNews(cmd *cobra.Command, args []string) {
	cfg := loadConfig(map[string]interface{}{
		"account":    newsAccount,
		"input":      newsInput,
		"owner":      newsOwner,
		"output-dir": newsOutput,
	})
	log := logger.GetLogger()

	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}
	if err := manager.Apply(&cfg.News); err != nil {
		ui.PrintError("No news API credentials found", err.Error())
		ui.PrintInfo("Store credentials with", "reviewscraper auth login")
		os.Exit(1)
	}

	companies, err := targets.Load(cfg.Input.File, targetOptions(cfg))
	if err != nil {
		ui.PrintError("Failed to read company list", err.Error())
		os.Exit(1)
	}

	mgr, err := storage.NewManager(cfg.Output.Directory)
	if err != nil {
		ui.PrintError("Failed to prepare output directory", err.Error())
		os.Exit(1)
	}

	if !quiet {
		ui.PrintInfo("Companies", strconv.Itoa(len(companies)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := news.NewCollector(news.NewClient(news.OptionsFromConfig(cfg.News)), ratelimit.NewRateLimiter(cfg.News.RequestsPerSecond))
	articles, stats, err := collector.Collect(ctx, companies)
	if err != nil && !errors.Is(err, context.Canceled) {
		ui.PrintError("News collection failed", err.Error())
		os.Exit(1)
	}

	// whatever was gathered before an interrupt is still written
	name, saveErr := news.Save(mgr, cfg.News.OutputPrefix, time.Now(), articles)
	if saveErr != nil {
		log.WithError(saveErr).Error("Failed to write articles")
		ui.PrintError("Failed to write articles", saveErr.Error())
		os.Exit(1)
	}

	logger.LogRunSummary(log, "news", map[string]int{
		"companies": stats.Companies,
		"failed":    stats.Failed,
		"articles":  stats.Articles,
	}, stats.Elapsed)

	if name == "" {
		ui.PrintWarning("No articles collected, nothing written")
	} else if !quiet {
		ui.PrintSuccess("Articles written: " + mgr.Path(name))
	}

	if err != nil {
		os.Exit(130)
	}
}
