package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// FakeSession is an in-memory Session for tests. Pages maps URLs to markup;
// a selector is present when it appears in Present for the current URL.
type FakeSession struct {
	mu sync.Mutex

	Pages   map[string]string
	Present map[string][]string

	// Redirect rewrites a navigated URL, as a site redirect would
	Redirect map[string]string

	// NavigateErr fails every navigation when set
	NavigateErr error

	current string
	visited []string
	closed  int
}

// NewFakeSession creates an empty FakeSession
func NewFakeSession() *FakeSession {
	return &FakeSession{
		Pages:    make(map[string]string),
		Present:  make(map[string][]string),
		Redirect: make(map[string]string),
	}
}

// AddPage registers markup for url along with the selectors it contains
func (f *FakeSession) AddPage(url, html string, selectors ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Pages[url] = html
	f.Present[url] = selectors
}

func (f *FakeSession) Navigate(url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.NavigateErr != nil {
		return f.NavigateErr
	}
	f.visited = append(f.visited, url)
	if to, ok := f.Redirect[url]; ok {
		url = to
	}
	f.current = url
	return nil
}

func (f *FakeSession) WaitPresent(selector string, timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, s := range f.Present[f.current] {
		if s == selector {
			return nil
		}
	}
	return fmt.Errorf("waiting for %s: %w", selector, context.DeadlineExceeded)
}

func (f *FakeSession) WaitURLContains(fragment string, timeout time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if strings.Contains(f.current, fragment) {
		return nil
	}
	return fmt.Errorf("waiting for url %s: %w", fragment, context.DeadlineExceeded)
}

func (f *FakeSession) HTML() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	html, ok := f.Pages[f.current]
	if !ok {
		return "", fmt.Errorf("no page for %s", f.current)
	}
	return html, nil
}

func (f *FakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

// Visited returns the navigated URLs in order
func (f *FakeSession) Visited() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.visited...)
}

// Closed returns how many times Close was called
func (f *FakeSession) Closed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// FakeFactory returns a Factory that hands out s and counts the sessions opened
func FakeFactory(s Session, opened *int) Factory {
	return func(ctx context.Context) (Session, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if opened != nil {
			*opened++
		}
		return s, nil
	}
}
