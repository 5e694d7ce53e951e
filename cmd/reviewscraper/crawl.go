package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"reviewscraper/pkg/browser"
	"reviewscraper/pkg/checkpoint"
	"reviewscraper/pkg/config"
	"reviewscraper/pkg/jobplanet"
	"reviewscraper/pkg/logger"
	"reviewscraper/pkg/ratelimit"
	"reviewscraper/pkg/scraper"
	"reviewscraper/pkg/storage"
	"reviewscraper/pkg/targets"
	"reviewscraper/pkg/ui"
	"reviewscraper/pkg/ui/tui"
)

var (
	// Crawl command flags
	inputFile     string
	ownerValue    string
	outputDir     string
	flushEvery    int
	snapshotEvery int
	itemDelay     time.Duration
	waitTimeout   time.Duration
	headless      bool
	notifications bool
	useTUI        bool
	logFile       string
)

// crawlCmd represents the crawl command
var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Collect review statistics for every company in the input list",
	Long: `Collect review statistics for every company in the input list.

For each company the crawler searches the review site, takes the first
candidate and reads the rating breakdown from its detail page. Companies
already present in the results or error file are skipped, so rerunning the
command resumes an interrupted crawl.

The canonical progress and error files are rewritten every --flush-every
companies, a numbered snapshot pair is written every --snapshot-every
companies, and a final write happens when the list is exhausted.`,
	Example: `  # Crawl the default input list
  reviewscraper crawl

  # Crawl another owner's share of the list into ./out
  reviewscraper crawl --owner 2번 --output-dir ./out

  # Watch the browser and use the dashboard
  reviewscraper crawl --headless=false --tui`,
	Args: cobra.NoArgs,
	Run:  runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().StringVarP(&inputFile, "input", "i", "", "company list CSV")
	crawlCmd.Flags().StringVar(&ownerValue, "owner", "", "only crawl rows with this owner tag")
	crawlCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for the progress files")
	crawlCmd.Flags().IntVar(&flushEvery, "flush-every", 10, "rewrite the progress files every N companies")
	crawlCmd.Flags().IntVar(&snapshotEvery, "snapshot-every", 50, "write a numbered snapshot every M companies")
	crawlCmd.Flags().DurationVar(&itemDelay, "delay", time.Second, "pause after every company")
	crawlCmd.Flags().DurationVar(&waitTimeout, "wait-timeout", 20*time.Second, "page element wait timeout")
	crawlCmd.Flags().BoolVar(&headless, "headless", true, "run Chrome without a window")
	crawlCmd.Flags().BoolVar(&notifications, "notifications", false, "send a desktop notification when the crawl ends")
	crawlCmd.Flags().BoolVar(&useTUI, "tui", false, "use interactive terminal UI with real-time progress")
	crawlCmd.Flags().StringVar(&logFile, "log-file", "", "also write logs to this file")
}

// crawlFlags collects the flags the user set explicitly, so that unset
// flags do not override the config file
func crawlFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := cmd.Flags().Changed

	if changed("input") {
		flags["input"] = inputFile
	}
	if changed("owner") {
		flags["owner"] = ownerValue
	}
	if changed("output-dir") {
		flags["output-dir"] = outputDir
	}
	if changed("flush-every") {
		flags["flush-every"] = flushEvery
	}
	if changed("snapshot-every") {
		flags["snapshot-every"] = snapshotEvery
	}
	if changed("delay") {
		flags["delay"] = itemDelay
	}
	if changed("wait-timeout") {
		flags["wait-timeout"] = waitTimeout
	}
	if changed("headless") {
		flags["headless"] = headless
	}
	if changed("notifications") {
		flags["notifications"] = notifications
	}
	if changed("log-file") {
		flags["log-file"] = logFile
	}
	// the dashboard owns the screen, keep stderr quiet unless asked
	if useTUI && !verbose && !cmd.Flags().Changed("log-level") {
		flags["log-level"] = "error"
	}
	return flags
}

func targetOptions(cfg *config.Config) targets.Options {
	return targets.Options{
		NameColumn:  cfg.Input.NameColumn,
		OwnerColumn: cfg.Input.OwnerColumn,
		OwnerValue:  cfg.Input.OwnerValue,
	}
}

func runCrawl(cmd *cobra.Command, args []string) {
	cfg := loadConfig(crawlFlags(cmd))

	runID := uuid.New().String()
	log := logger.GetLogger().WithField("run_id", runID)
	logger.SetLogger(log)
	log.WithField("version", version).Info("reviewscraper starting")

	items, err := targets.Load(cfg.Input.File, targetOptions(cfg))
	if err != nil {
		log.WithError(err).Error("Failed to read company list")
		ui.PrintError("Failed to read company list", err.Error())
		os.Exit(1)
	}

	mgr, err := storage.NewManager(cfg.Output.Directory)
	if err != nil {
		ui.PrintError("Failed to prepare output directory", err.Error())
		os.Exit(1)
	}

	store := checkpoint.NewStore(mgr, cfg.Output.ProgressFile, cfg.Output.ErrorFile)
	fetcher := jobplanet.NewFetcher(
		browser.NewChromeFactory(browser.OptionsFromConfig(&cfg.Browser)),
		jobplanet.OptionsFromConfig(&cfg.Site, &cfg.Browser),
	)
	runner := scraper.New(fetcher, store, ratelimit.NewFixedDelay(cfg.Schedule.ItemDelay), scraper.Options{
		FlushEvery:    cfg.Schedule.FlushEvery,
		SnapshotEvery: cfg.Schedule.SnapshotEvery,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reporters ui.MultiReporter
	if cfg.Notifications.Enabled {
		reporters = append(reporters, ui.NewNotifier(cfg.Notifications, nil))
	}

	log.WithFields(map[string]interface{}{
		"input":          cfg.Input.File,
		"owner":          cfg.Input.OwnerValue,
		"companies":      len(items),
		"flush_every":    cfg.Schedule.FlushEvery,
		"snapshot_every": cfg.Schedule.SnapshotEvery,
		"output":         mgr.GetOutputDir(),
	}).Info("Crawl starting")

	if useTUI {
		err = crawlWithTUI(ctx, stop, runner, reporters, items)
	} else {
		err = crawlWithProgress(ctx, cfg, runner, reporters, items)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			ui.PrintWarning("Crawl interrupted, progress saved", cfg.ProgressPath())
			os.Exit(130)
		}
		log.WithError(err).Error("Crawl failed")
		ui.PrintError("Crawl failed", err.Error())
		os.Exit(1)
	}

	if !quiet {
		ui.PrintSuccess("Crawl completed")
		ui.PrintInfo("Results", cfg.ProgressPath())
		ui.PrintInfo("Errors", cfg.ErrorPath())
	}
}

func crawlWithProgress(ctx context.Context, cfg *config.Config, runner *scraper.Runner, reporters ui.MultiReporter, items []string) error {
	if !quiet {
		ui.PrintInfo("Input", cfg.Input.File)
		ui.PrintInfo("Companies", strconv.Itoa(len(items)))
	}

	sink, err := ui.OpenProgressSink(os.Stdout, filepath.Join(cfg.Output.Directory, cfg.Output.ProgressLog))
	if err != nil {
		return err
	}
	defer sink.Close()

	reporters = append(reporters, ui.NewProgressDisplay(sink, sink.Interactive, "crawl"))
	runner.SetReporter(reporters)

	_, err = runner.Run(ctx, items)
	return err
}

func crawlWithTUI(ctx context.Context, cancel context.CancelFunc, runner *scraper.Runner, reporters ui.MultiReporter, items []string) error {
	terminal := tui.NewTUI("crawl", cancel)
	reporters = append(reporters, terminal)
	runner.SetReporter(reporters)

	crawlDone := make(chan error, 1)
	go func() {
		_, err := runner.Run(ctx, items)
		crawlDone <- err
	}()

	tuiDone := make(chan error, 1)
	go func() {
		tuiDone <- terminal.Start()
	}()

	select {
	case err := <-crawlDone:
		terminal.Stop()
		<-tuiDone
		return err
	case err := <-tuiDone:
		// the dashboard went away, let the crawl save and stop
		cancel()
		crawlErr := <-crawlDone
		if err != nil {
			return err
		}
		return crawlErr
	}
}
