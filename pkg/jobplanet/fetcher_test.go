package jobplanet

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"reviewscraper/pkg/browser"
	"reviewscraper/pkg/config"
	"reviewscraper/pkg/errors"
	"reviewscraper/pkg/logger"
	"reviewscraper/pkg/models"
)

func newTestFetcher(s browser.Session, opened *int) *Fetcher {
	cfg := config.DefaultConfig()
	f := NewFetcher(browser.FakeFactory(s, opened), OptionsFromConfig(&cfg.Site, &cfg.Browser))
	f.SetLogger(logger.NewNopLogger())
	return f
}

func TestURLs(t *testing.T) {
	f := newTestFetcher(browser.NewFakeSession(), nil)

	assert.Equal(t, "https://www.jobplanet.co.kr/search/companies?query=LG%EC%A0%84%EC%9E%90", f.SearchURL("LG전자"))
	assert.Equal(t, "https://www.jobplanet.co.kr/search/companies?query=A%20%26%20B%2BC", f.SearchURL("A & B+C"))
	assert.Equal(t, "https://www.jobplanet.co.kr/companies/30139", f.DetailURL("30139"))
}

func TestFetchMergesSearchAndDetail(t *testing.T) {
	s := browser.NewFakeSession()
	opened := 0
	f := newTestFetcher(s, &opened)

	s.AddPage(f.SearchURL("에이크미"), searchPage, SearchCardSelector)
	s.AddPage(f.DetailURL("30139"), detailPage, DetailMarkerSelector)

	result, err := f.Fetch(context.Background(), "에이크미")
	require.NoError(t, err)

	assert.Equal(t, "30139", models.Value(result.CompanyID))
	assert.Equal(t, "에이크미(주)", models.Value(result.Name))
	assert.Equal(t, "3.6", models.Value(result.SearchRating))
	assert.Equal(t, "512", models.Value(result.ReviewCount))
	assert.Equal(t, "3.4", models.Value(result.OverallRating))
	assert.Equal(t, "3.1", result.Stats["복지 및 급여"])
	assert.Equal(t, "에이크미", result.Query)

	assert.Equal(t, 1, opened)
	assert.Equal(t, 1, s.Closed())
	assert.Equal(t, []string{f.SearchURL("에이크미"), f.DetailURL("30139")}, s.Visited())
}

func TestFetchNoResults(t *testing.T) {
	s := browser.NewFakeSession()
	f := newTestFetcher(s, nil)
	// the card wait succeeded but the markup read afterwards holds no card
	s.AddPage(f.SearchURL("없는회사"), emptySearchPage, SearchCardSelector)

	result, err := f.Fetch(context.Background(), "없는회사")
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.IsNoResults(err))
	assert.Equal(t, "no results", err.Error())
	assert.Equal(t, 1, s.Closed())
}

func TestFetchWithoutCompanyIDSkipsDetail(t *testing.T) {
	s := browser.NewFakeSession()
	f := newTestFetcher(s, nil)
	page := `<div class="searchWrap"><div class="grid-cols-2"><a href="/ad"><h4>광고</h4></a></div></div>`
	s.AddPage(f.SearchURL("광고"), page, SearchCardSelector)

	result, err := f.Fetch(context.Background(), "광고")
	require.NoError(t, err)
	assert.Nil(t, result.CompanyID)
	assert.Equal(t, "광고", models.Value(result.Name))
	assert.Nil(t, result.ReviewCount)
	assert.Len(t, s.Visited(), 1)
}

func TestFetchSearchTimeout(t *testing.T) {
	s := browser.NewFakeSession()
	f := newTestFetcher(s, nil)
	// page loads but no result card ever appears
	s.AddPage(f.SearchURL("느린회사"), "<html></html>")

	_, err := f.Fetch(context.Background(), "느린회사")
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err))

	var fe *errors.Error
	require.True(t, stderrors.As(err, &fe))
	assert.Equal(t, errors.StageSearch, fe.Stage)
	assert.Contains(t, err.Error(), SearchCardSelector)
	assert.Equal(t, 1, s.Closed())
}

func TestFetchWaitsForCardsNotContainer(t *testing.T) {
	s := browser.NewFakeSession()
	f := newTestFetcher(s, nil)
	// the container is rendered while the cards are still loading
	s.AddPage(f.SearchURL("로딩중"), `<div class="searchWrap"><div class="grid-cols-2"></div></div>`, "div.searchWrap")

	_, err := f.Fetch(context.Background(), "로딩중")
	require.Error(t, err)
	assert.False(t, errors.IsNoResults(err))
	assert.True(t, errors.IsTimeout(err))

	var fe *errors.Error
	require.True(t, stderrors.As(err, &fe))
	assert.Equal(t, errors.StageSearch, fe.Stage)
}

func TestFetchURLGuardTimeout(t *testing.T) {
	s := browser.NewFakeSession()
	f := newTestFetcher(s, nil)
	s.Redirect[f.SearchURL("리다이렉트")] = "https://www.jobplanet.co.kr/login"

	_, err := f.Fetch(context.Background(), "리다이렉트")
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err))
	assert.Contains(t, err.Error(), "/search/companies")
}

func TestFetchDetailTimeout(t *testing.T) {
	s := browser.NewFakeSession()
	f := newTestFetcher(s, nil)
	s.AddPage(f.SearchURL("에이크미"), searchPage, SearchCardSelector)
	s.AddPage(f.DetailURL("30139"), "<html></html>")

	_, err := f.Fetch(context.Background(), "에이크미")
	require.Error(t, err)

	var fe *errors.Error
	require.True(t, stderrors.As(err, &fe))
	assert.Equal(t, errors.ErrorTypeTimeout, fe.Type)
	assert.Equal(t, errors.StageDetail, fe.Stage)
	assert.Equal(t, 1, s.Closed())
}

func TestFetchTransportError(t *testing.T) {
	s := browser.NewFakeSession()
	s.NavigateErr = stderrors.New("net::ERR_CONNECTION_RESET")
	f := newTestFetcher(s, nil)

	_, err := f.Fetch(context.Background(), "에이크미")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeTransport, errors.TypeOf(err))
	assert.Contains(t, err.Error(), "ERR_CONNECTION_RESET")
	assert.Equal(t, 1, s.Closed())
}

func TestFetchSessionOpenFailure(t *testing.T) {
	cfg := config.DefaultConfig()
	failing := func(ctx context.Context) (browser.Session, error) {
		return nil, stderrors.New("chrome not found")
	}
	f := NewFetcher(failing, OptionsFromConfig(&cfg.Site, &cfg.Browser))
	f.SetLogger(logger.NewNopLogger())

	_, err := f.Fetch(context.Background(), "에이크미")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeTransport, errors.TypeOf(err))
}

func TestOptionsFromConfig(t *testing.T) {
	site := config.SiteConfig{BaseURL: "https://example.test/", SearchPath: "/s?q=", DetailPath: "/c/"}
	b := config.BrowserConfig{WaitTimeout: 5 * time.Second, URLTimeout: time.Second}

	opts := OptionsFromConfig(&site, &b)
	assert.Equal(t, "https://example.test", opts.BaseURL)
	assert.Equal(t, 5*time.Second, opts.WaitTimeout)
}
