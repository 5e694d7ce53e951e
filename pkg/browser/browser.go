// Package browser opens isolated headless browser sessions.
//
// A Session exposes only what the review-site fetcher needs: navigate,
// bounded waits, and reading the rendered markup. Each session owns its
// own browser process and must be closed by the caller.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"reviewscraper/pkg/config"
)

// Session is one exclusively owned browser session
type Session interface {
	// Navigate loads url and waits for the load event
	Navigate(url string) error

	// WaitPresent blocks until an element matching selector exists in the
	// DOM or timeout expires
	WaitPresent(selector string, timeout time.Duration) error

	// WaitURLContains blocks until the current URL contains fragment or
	// timeout expires
	WaitURLContains(fragment string, timeout time.Duration) error

	// HTML returns the rendered markup of the whole document
	HTML() (string, error)

	// Close releases the browser. It is safe to call more than once.
	Close() error
}

// Factory opens a new Session bound to ctx
type Factory func(ctx context.Context) (Session, error)

// Options configure the Chrome sessions
type Options struct {
	Headless   bool
	DisableGPU bool
	UserAgent  string
	ExecPath   string

	// SessionTimeout bounds the whole lifetime of a session. Zero disables it.
	SessionTimeout time.Duration
}

// OptionsFromConfig converts the browser configuration section
func OptionsFromConfig(cfg *config.BrowserConfig) Options {
	return Options{
		Headless:       cfg.Headless,
		DisableGPU:     cfg.DisableGPU,
		UserAgent:      cfg.UserAgent,
		ExecPath:       cfg.ExecPath,
		SessionTimeout: cfg.SessionTimeout,
	}
}

// allocatorOptions builds the Chrome command line. Automation switches are
// removed so the site serves the same markup it serves to regular visitors.
func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", opts.DisableGPU),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	return allocOpts
}

// NewChromeFactory returns a Factory launching one Chrome process per session
func NewChromeFactory(opts Options) Factory {
	return func(ctx context.Context) (Session, error) {
		var cancels []context.CancelFunc
		if opts.SessionTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.SessionTimeout)
			cancels = append(cancels, cancel)
		}

		allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOptions(opts)...)
		tabCtx, cancelTab := chromedp.NewContext(allocCtx)
		cancels = append(cancels, cancelAlloc, cancelTab)

		s := &chromeSession{ctx: tabCtx, cancels: cancels}

		// The first Run starts the browser
		if err := chromedp.Run(tabCtx); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		return s, nil
	}
}

type chromeSession struct {
	ctx     context.Context
	cancels []context.CancelFunc
	closed  bool
}

func (s *chromeSession) Navigate(url string) error {
	if err := chromedp.Run(s.ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (s *chromeSession) WaitPresent(selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		return waitError(ctx, err)
	}
	return nil
}

func (s *chromeSession) WaitURLContains(fragment string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		var location string
		if err := chromedp.Run(ctx, chromedp.Location(&location)); err != nil {
			return waitError(ctx, err)
		}
		if strings.Contains(location, fragment) {
			return nil
		}

		select {
		case <-ctx.Done():
			return waitError(ctx, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (s *chromeSession) HTML() (string, error) {
	var html string
	if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read markup: %w", err)
	}
	return html, nil
}

func (s *chromeSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
	return nil
}

// waitError reports an expired wait as context.DeadlineExceeded so callers
// can classify it as a timeout
func waitError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%v: %w", err, context.DeadlineExceeded)
	}
	return err
}
