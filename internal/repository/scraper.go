package repository

import (
	"context"
	"time"

	"cryptonews/internal/domain"
)

// Session returns rendered markup for a URL. Close must be called exactly once.
type Session interface {
	Fetch(ctx context.Context, url string) (string, error)
	Close() error
}

// SessionOpener acquires a fresh Session.
type SessionOpener func(ctx context.Context) (Session, error)

// NewsSearcher crawls every page of one search window.
type NewsSearcher interface {
	Search(ctx context.Context, window domain.SearchWindow) ([]domain.NewsRecord, error)
}

// DateNormalizer resolves a raw date label.
type DateNormalizer interface {
	Normalize(raw string) (time.Time, error)
}
