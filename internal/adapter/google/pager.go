// Package google crawls the news tab of Google search for a query and date range.
package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"cryptonews/internal/domain"
	"cryptonews/internal/repository"
)

const (
	DefaultHost       = "www.google.com"
	DefaultMaxPages   = 100
	DefaultPageDelay  = 2 * time.Second
	DefaultFinalDelay = 15 * time.Second

	resultsPerPage = 10
	urlDateLayout  = "01/02/2006"
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// PageExtractor turns one rendered page into records.
type PageExtractor interface {
	Extract(markup string) ([]domain.NewsRecord, error)
}

// Pager drives the page-by-page crawl of a single search window.
type Pager struct {
	Host       string
	MaxPages   int
	PageDelay  time.Duration
	FinalDelay time.Duration

	open      repository.SessionOpener
	extractor PageExtractor
	sleep     Sleeper
	logger    *slog.Logger
}

type PagerOption func(*Pager)

func WithHost(host string) PagerOption {
	return func(p *Pager) {
		if host != "" {
			p.Host = host
		}
	}
}

func WithMaxPages(n int) PagerOption {
	return func(p *Pager) {
		if n > 0 {
			p.MaxPages = n
		}
	}
}

func WithDelays(page, final time.Duration) PagerOption {
	return func(p *Pager) {
		p.PageDelay = page
		p.FinalDelay = final
	}
}

func WithSleeper(s Sleeper) PagerOption {
	return func(p *Pager) { p.sleep = s }
}

func WithLogger(l *slog.Logger) PagerOption {
	return func(p *Pager) {
		if l != nil {
			p.logger = l
		}
	}
}

func NewPager(open repository.SessionOpener, extractor PageExtractor, opts ...PagerOption) *Pager {
	p := &Pager{
		Host:       DefaultHost,
		MaxPages:   DefaultMaxPages,
		PageDelay:  DefaultPageDelay,
		FinalDelay: DefaultFinalDelay,
		open:       open,
		extractor:  extractor,
		sleep:      sleepContext,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SearchURL builds the results URL of page (0-based) for window.
func SearchURL(host string, window domain.SearchWindow, page int) string {
	return fmt.Sprintf("https://%s/search?q=%s&tbs=cdr:1,cd_min:%s,cd_max:%s,sbd:1&tbm=nws&start=%d",
		host,
		escapeQuery(window.Query),
		window.From.Format(urlDateLayout),
		window.To.Format(urlDateLayout),
		page*resultsPerPage,
	)
}

// escapeQuery percent-encodes everything but unreserved characters; spaces become %20.
func escapeQuery(q string) string {
	return strings.ReplaceAll(url.QueryEscape(q), "+", "%20")
}

// Search crawls pages until one comes back empty or MaxPages is reached.
// The session is opened once and closed exactly once, whatever the outcome.
func (p *Pager) Search(ctx context.Context, window domain.SearchWindow) ([]domain.NewsRecord, error) {
	var records []domain.NewsRecord
	lastPage := -1
	wrap := func(err error) error {
		return &domain.WindowError{Query: window.Query, From: window.From, To: window.To, LastPage: lastPage, Err: err}
	}

	session, err := p.open(ctx)
	if err != nil {
		return nil, wrap(err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			p.logger.Warn("close browser session", "error", cerr)
		}
	}()

	log := p.logger.With("query", window.Query,
		"from", window.From.Format("2006-01-02"), "to", window.To.Format("2006-01-02"))

	for page := 0; page < p.MaxPages; page++ {
		target := SearchURL(p.Host, window, page)
		markup, err := session.Fetch(ctx, target)
		if err != nil {
			return nil, wrap(fmt.Errorf("fetch page %d: %w", page, err))
		}
		found, err := p.extractor.Extract(markup)
		if err != nil {
			return nil, wrap(fmt.Errorf("extract page %d: %w", page, err))
		}
		if len(found) == 0 {
			log.Info("no more results", "page", page)
			break
		}
		records = append(records, found...)
		lastPage = page
		log.Info("page crawled", "page", page, "records", len(found), "total", len(records))

		if err := p.sleep(ctx, p.PageDelay); err != nil {
			return nil, wrap(err)
		}
	}

	if err := p.sleep(ctx, p.FinalDelay); err != nil {
		return nil, wrap(err)
	}
	return records, nil
}
