package news

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"reviewscraper/pkg/logger"
	"reviewscraper/pkg/models"
	"reviewscraper/pkg/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Naver-Client-Id") != "id" || r.Header.Get("X-Naver-Client-Secret") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		q := r.URL.Query()
		if q.Get("query") == "Broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"total":   1,
			"display": 1,
			"items": []map[string]string{{
				"title":        "<b>" + q.Get("query") + "</b> opens office",
				"originallink": "https://news.example/orig",
				"link":         "https://news.example/link",
				"description":  "display=" + q.Get("display") + " sort=" + q.Get("sort") + " <b>start</b>=" + q.Get("start"),
				"pubDate":      "Mon, 01 Jan 2024 09:00:00 +0900",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server, id string) *Client {
	c := NewClient(Options{
		Endpoint:     srv.URL + "/v1/search/news.json",
		ClientID:     id,
		ClientSecret: "secret",
		Display:      10,
		Start:        1,
		Sort:         "sim",
		Timeout:      5 * time.Second,
	})
	c.SetLogger(logger.NewNopLogger())
	return c
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "Acme wins", StripTags("<b>Acme</b> wins"))
	assert.Equal(t, "a &amp; b", StripTags("a &amp; b"))
	assert.Equal(t, "", StripTags("<br/>"))
}

func TestClientSearch(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(srv, "id")

	articles, err := c.Search(context.Background(), "스타 기업")
	require.NoError(t, err)
	require.Len(t, articles, 1)

	a := articles[0]
	assert.Equal(t, "스타 기업", a.Company)
	assert.Equal(t, "스타 기업 opens office", a.Title)
	assert.Equal(t, "display=10 sort=sim start=1", a.Description)
	assert.Equal(t, "https://news.example/orig", a.OriginalLink)
	assert.Equal(t, "Mon, 01 Jan 2024 09:00:00 +0900", a.PubDate)
}

func TestClientSearchNon200(t *testing.T) {
	srv := newTestServer(t)

	_, err := newTestClient(srv, "wrong").Search(context.Background(), "Acme")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.Code)
}

type fakeSearcher struct {
	calls []string
	fail  map[string]bool
	hook  func(company string)
}

func (f *fakeSearcher) Search(ctx context.Context, company string) ([]models.Article, error) {
	f.calls = append(f.calls, company)
	if f.hook != nil {
		f.hook(company)
	}
	if f.fail[company] {
		return nil, errors.New("boom")
	}
	return []models.Article{{Company: company, Title: "t1"}, {Company: company, Title: "t2"}}, nil
}

func TestCollectorSkipsFailures(t *testing.T) {
	srv := newTestServer(t)
	tl := logger.NewTestLogger()
	c := NewCollector(newTestClient(srv, "id"), nil)
	c.SetLogger(tl)

	articles, stats, err := c.Collect(context.Background(), []string{"Acme", "Broken", "Beta"})
	require.NoError(t, err)

	require.Len(t, articles, 2)
	assert.Equal(t, "Acme", articles[0].Company)
	assert.Equal(t, "Beta", articles[1].Company)
	assert.Equal(t, 3, stats.Companies)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 2, stats.Articles)

	warns := tl.GetMessagesByLevel("WARN")
	require.Len(t, warns, 1)
	assert.Equal(t, "Broken", warns[0].Fields["company"])
}

func TestCollectorStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &fakeSearcher{hook: func(company string) {
		if company == "B" {
			cancel()
		}
	}}
	c := NewCollector(s, nil)
	c.SetLogger(logger.NewNopLogger())

	articles, _, err := c.Collect(ctx, []string{"A", "B", "C"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"A", "B"}, s.calls)
	assert.Len(t, articles, 2)
}

func TestOutputName(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	assert.Equal(t, "naver_news_final_20240305_140709.csv", OutputName("naver_news_final", ts))
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	mgr, err := storage.NewManager(dir)
	require.NoError(t, err)
	ts := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

	name, err := Save(mgr, "naver_news_final", ts, []models.Article{{
		Company:     "Acme",
		Title:       "Acme, again",
		Link:        "https://news.example/link",
		Description: "desc",
		PubDate:     "today",
	}})
	require.NoError(t, err)
	assert.Equal(t, "naver_news_final_20240305_140709.csv", name)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	content := string(data)

	assert.True(t, strings.HasPrefix(content, "\ufeff기업명,title,originallink,link,description,pubDate\n"))
	assert.Contains(t, content, "Acme,\"Acme, again\",,https://news.example/link,desc,today\n")
}

func TestSaveEmptyWritesNothing(t *testing.T) {
	dir := t.TempDir()
	mgr, err := storage.NewManager(dir)
	require.NoError(t, err)

	name, err := Save(mgr, "naver_news_final", time.Now(), nil)
	require.NoError(t, err)
	assert.Empty(t, name)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
