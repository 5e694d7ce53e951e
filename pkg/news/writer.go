package news

import (
	"encoding/csv"
	"io"
	"time"

	"reviewscraper/pkg/models"
	"reviewscraper/pkg/storage"
)

const bom = "\ufeff"

// Columns is the header of the articles file
var Columns = []string{"기업명", "title", "originallink", "link", "description", "pubDate"}

// OutputName returns the timestamped name of the articles file
func OutputName(prefix string, t time.Time) string {
	return prefix + "_" + t.Format("20060102_150405") + ".csv"
}

// Save writes articles to a new timestamped file and returns its name.
// Nothing is written when articles is empty and the name is "".
func Save(s *storage.Manager, prefix string, now time.Time, articles []models.Article) (string, error) {
	if len(articles) == 0 {
		return "", nil
	}

	name := OutputName(prefix, now)
	if err := s.WriteFile(name, func(w io.Writer) error {
		return writeArticles(w, articles)
	}); err != nil {
		return "", err
	}
	return name, nil
}

func writeArticles(w io.Writer, articles []models.Article) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, a := range articles {
		if err := cw.Write([]string{a.Company, a.Title, a.OriginalLink, a.Link, a.Description, a.PubDate}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
