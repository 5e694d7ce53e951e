package news

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"reviewscraper/pkg/config"
	"reviewscraper/pkg/logger"
	"reviewscraper/pkg/models"
)

const defaultUserAgent = "Mozilla/5.0"

// tagPattern matches the <b> highlight markup the API puts around hits
var tagPattern = regexp.MustCompile(`<.*?>`)

// StripTags removes every HTML tag from s
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// Options configure the news search client
type Options struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Display      int
	Start        int
	Sort         string
	Timeout      time.Duration
	UserAgent    string
}

// OptionsFromConfig builds client options from the news configuration
func OptionsFromConfig(cfg config.NewsConfig) Options {
	return Options{
		Endpoint:     cfg.Endpoint,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Display:      cfg.Display,
		Start:        cfg.Start,
		Sort:         cfg.Sort,
		Timeout:      cfg.Timeout,
	}
}

// StatusError is returned when the API answers with anything but 200
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed: %s", e.Status)
}

type searchItem struct {
	Title        string `json:"title"`
	OriginalLink string `json:"originallink"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
}

type searchResponse struct {
	Total   int          `json:"total"`
	Display int          `json:"display"`
	Items   []searchItem `json:"items"`
}

// Client queries the news search API
type Client struct {
	http   *resty.Client
	opts   Options
	logger logger.Logger
}

// NewClient creates a news search client
func NewClient(opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	http := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("X-Naver-Client-Id", opts.ClientID).
		SetHeader("X-Naver-Client-Secret", opts.ClientSecret).
		SetHeader("User-Agent", opts.UserAgent)

	return &Client{
		http:   http,
		opts:   opts,
		logger: logger.GetLogger().WithField("component", "news"),
	}
}

// SetLogger replaces the client's logger
func (c *Client) SetLogger(l logger.Logger) {
	c.logger = l
}

// Search returns the articles found for company, tags stripped
func (c *Client) Search(ctx context.Context, company string) ([]models.Article, error) {
	var body searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":   company,
			"display": strconv.Itoa(c.opts.Display),
			"start":   strconv.Itoa(c.opts.Start),
			"sort":    c.opts.Sort,
		}).
		SetResult(&body).
		Get(c.opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("news request for %q: %w", company, err)
	}

	logger.LogRequest(c.logger, "GET", c.opts.Endpoint, resp.StatusCode(), resp.Time())

	if resp.StatusCode() != 200 {
		return nil, &StatusError{Code: resp.StatusCode(), Status: resp.Status()}
	}

	articles := make([]models.Article, 0, len(body.Items))
	for _, item := range body.Items {
		articles = append(articles, models.Article{
			Company:      company,
			Title:        StripTags(item.Title),
			OriginalLink: item.OriginalLink,
			Link:         item.Link,
			Description:  StripTags(item.Description),
			PubDate:      item.PubDate,
		})
	}
	return articles, nil
}
