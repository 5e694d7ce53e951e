package jobplanet

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"reviewscraper/pkg/models"
)

// Selectors of the search results and company detail pages
const (
	SearchCardSelector = "div.searchWrap div.grid-cols-2 > a"
	cardNameSelector   = "h4"
	cardRatingSelector = "div.flex.items-center > span:nth-child(2)"

	DetailMarkerSelector  = "h2.stats_ttl"
	overallRatingSelector = "div.rate_star_top span.rate_point"
	barSelector           = "div.rate_bar_group > div"
	barTitleSelector      = "div.rate_bar_title"
	pieSelector           = "div.rate_pie_set"
	pieLabelSelector      = "div.rate_label"
	pointSelector         = "span.txt_point"
)

var (
	companyIDPattern   = regexp.MustCompile(`/companies/(\d+)`)
	reviewCountPattern = regexp.MustCompile(`\((\d+)명\)`)
)

// Stats holds what the detail page yields
type Stats struct {
	ReviewCount   *string
	OverallRating *string

	// Labels maps sub-rating labels to their displayed scores
	Labels map[string]string
}

// ParseCandidates extracts the search result cards in page order
func ParseCandidates(html string) ([]models.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	var candidates []models.Candidate
	doc.Find(SearchCardSelector).Each(func(_ int, card *goquery.Selection) {
		var c models.Candidate
		if href, ok := card.Attr("href"); ok {
			if m := companyIDPattern.FindStringSubmatch(href); m != nil {
				c.CompanyID = models.Str(m[1])
			}
		}
		c.Name = optionalText(card.Find(cardNameSelector))
		c.Rating = optionalText(card.Find(cardRatingSelector))
		candidates = append(candidates, c)
	})
	return candidates, nil
}

// SelectCandidate applies the selection policy: the first card wins. It
// returns false when there is nothing to select.
func SelectCandidate(candidates []models.Candidate) (models.Candidate, bool) {
	if len(candidates) == 0 {
		return models.Candidate{}, false
	}
	return candidates[0], true
}

// ParseStats extracts review statistics from a company detail page. Missing
// regions leave the corresponding fields nil.
func ParseStats(html string) (Stats, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Stats{}, fmt.Errorf("parse detail page: %w", err)
	}

	stats := Stats{Labels: make(map[string]string)}

	if title := doc.Find(DetailMarkerSelector).First(); title.Length() > 0 {
		if m := reviewCountPattern.FindStringSubmatch(title.Text()); m != nil {
			stats.ReviewCount = models.Str(m[1])
		}
	}
	stats.OverallRating = optionalText(doc.Find(overallRatingSelector))

	collect := func(groupSel, labelSel string) {
		doc.Find(groupSel).Each(func(_ int, group *goquery.Selection) {
			label := group.Find(labelSel).First()
			point := group.Find(pointSelector).First()
			if label.Length() == 0 || point.Length() == 0 {
				return
			}
			stats.Labels[strippedText(label)] = strippedText(point)
		})
	}
	collect(barSelector, barTitleSelector)
	collect(pieSelector, pieLabelSelector)

	return stats, nil
}

func optionalText(s *goquery.Selection) *string {
	first := s.First()
	if first.Length() == 0 {
		return nil
	}
	return models.Str(strippedText(first))
}

// strippedText concatenates the trimmed text nodes under s
func strippedText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch name := goquery.NodeName(c); {
		case name == "#text":
			b.WriteString(strings.TrimSpace(c.Text()))
		case !strings.HasPrefix(name, "#"):
			b.WriteString(strippedText(c))
		}
	})
	return b.String()
}
