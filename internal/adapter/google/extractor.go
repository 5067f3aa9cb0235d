package google

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"cryptonews/internal/domain"
)

// Selectors of the news tab of the results page.
const (
	selContainer   = "div#search"
	selResult      = "div.SoaBEf"
	selMedia       = "span"
	selDate        = "div.OSrXXb"
	selLink        = "a[href]"
	selTitle       = `div[role="heading"]`
	selDescription = "div.GI74Re.nDgy9d"
)

// Extractor parses rendered result pages into news records.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract returns the records of one page. A page without the results container
// yields an empty slice and no error.
func (e *Extractor) Extract(markup string) ([]domain.NewsRecord, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, &domain.MalformedPageError{Reason: "empty document"}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, &domain.MalformedPageError{Reason: "parse html", Err: err}
	}

	records := []domain.NewsRecord{}
	doc.Find(selContainer).First().Find(selResult).Each(func(i int, s *goquery.Selection) {
		title := cleanText(s.Find(selTitle).First().Text())
		if title == "" {
			return
		}
		link, _ := s.Find(selLink).First().Attr("href")

		rec := domain.NewsRecord{
			Title:       title,
			Media:       cleanText(s.Find(selMedia).First().Text()),
			RawDate:     cleanText(s.Find(selDate).First().Text()),
			Description: cleanText(s.Find(selDescription).First().Text()),
			Link:        strings.TrimSpace(link),
		}
		e.logger.Debug("news record found",
			"title", rec.Title, "media", rec.Media, "date", rec.RawDate, "link", rec.Link)
		records = append(records, rec)
	})

	return records, nil
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
