package google

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"cryptonews/internal/domain"
	"cryptonews/internal/repository"
)

// fakeSession serves pages keyed by the start offset in the URL.
type fakeSession struct {
	pages   map[int]string
	failAt  int
	fetched []string
	closed  int
}

func (f *fakeSession) Fetch(_ context.Context, url string) (string, error) {
	f.fetched = append(f.fetched, url)
	idx := strings.LastIndex(url, "&start=")
	offset, _ := strconv.Atoi(url[idx+len("&start="):])
	page := offset / 10
	if f.failAt >= 0 && page == f.failAt {
		return "", errors.New("navigation failed")
	}
	return f.pages[page], nil
}

func (f *fakeSession) Close() error {
	f.closed++
	return nil
}

// pageExtractor decodes the fake markup "title|title|..." into records.
type pageExtractor struct{}

func (pageExtractor) Extract(markup string) ([]domain.NewsRecord, error) {
	if markup == "BROKEN" {
		return nil, &domain.MalformedPageError{Reason: "broken"}
	}
	var out []domain.NewsRecord
	for _, title := range strings.Split(markup, "|") {
		if title == "" {
			continue
		}
		out = append(out, domain.NewsRecord{Title: title, Link: "https://example.com/" + title})
	}
	return out, nil
}

type sleepLog struct {
	calls []time.Duration
}

func (s *sleepLog) sleep(_ context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return nil
}

func newTestPager(session *fakeSession, sl *sleepLog, opts ...PagerOption) *Pager {
	open := func(context.Context) (repository.Session, error) { return session, nil }
	opts = append([]PagerOption{WithSleeper(sl.sleep), WithDelays(time.Second, 5*time.Second)}, opts...)
	return NewPager(open, pageExtractor{}, opts...)
}

var testWindow = domain.SearchWindow{
	Query: "bitcoin",
	From:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	To:    time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
}

func TestSearchURL(t *testing.T) {
	w := domain.SearchWindow{
		Query: "bitcoin & ethereum/usd",
		From:  time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		To:    time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	got := SearchURL(DefaultHost, w, 3)
	want := "https://www.google.com/search?q=bitcoin%20%26%20ethereum%2Fusd&tbs=cdr:1,cd_min:07/01/2024,cd_max:12/31/2024,sbd:1&tbm=nws&start=30"
	if got != want {
		t.Fatalf("SearchURL =\n%s\nwant\n%s", got, want)
	}
}

func TestSearchStopsAtFirstEmptyPage(t *testing.T) {
	session := &fakeSession{failAt: -1, pages: map[int]string{
		0: "a|b|c",
		1: "d|e",
		2: "",
		3: "never",
	}}
	sl := &sleepLog{}
	records, err := newTestPager(session, sl).Search(context.Background(), testWindow)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	var titles []string
	for _, r := range records {
		titles = append(titles, r.Title)
	}
	if got := strings.Join(titles, ","); got != "a,b,c,d,e" {
		t.Fatalf("records out of order: %s", got)
	}
	if len(session.fetched) != 3 {
		t.Fatalf("expected 3 fetches, got %d: %v", len(session.fetched), session.fetched)
	}
	for i, u := range session.fetched {
		if !strings.HasSuffix(u, fmt.Sprintf("&start=%d", i*10)) {
			t.Fatalf("fetch %d used %s", i, u)
		}
	}
	if session.closed != 1 {
		t.Fatalf("session closed %d times, want 1", session.closed)
	}
	wantSleeps := []time.Duration{time.Second, time.Second, 5 * time.Second}
	if fmt.Sprint(sl.calls) != fmt.Sprint(wantSleeps) {
		t.Fatalf("sleeps = %v, want %v", sl.calls, wantSleeps)
	}
}

func TestSearchEmptyFirstPage(t *testing.T) {
	session := &fakeSession{failAt: -1, pages: map[int]string{}}
	records, err := newTestPager(session, &sleepLog{}).Search(context.Background(), testWindow)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
	if len(session.fetched) != 1 || session.closed != 1 {
		t.Fatalf("fetched=%d closed=%d", len(session.fetched), session.closed)
	}
}

func TestSearchPageCap(t *testing.T) {
	pages := make(map[int]string)
	for i := 0; i < 150; i++ {
		pages[i] = fmt.Sprintf("p%d", i)
	}
	session := &fakeSession{failAt: -1, pages: pages}
	records, err := newTestPager(session, &sleepLog{}).Search(context.Background(), testWindow)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(session.fetched) != DefaultMaxPages {
		t.Fatalf("expected %d fetches, got %d", DefaultMaxPages, len(session.fetched))
	}
	if len(records) != DefaultMaxPages || records[99].Title != "p99" {
		t.Fatalf("unexpected records: %d", len(records))
	}
	if session.closed != 1 {
		t.Fatalf("session closed %d times", session.closed)
	}
}

func TestSearchFetchErrorAbortsWindow(t *testing.T) {
	session := &fakeSession{failAt: 2, pages: map[int]string{0: "a", 1: "b", 2: "c"}}
	records, err := newTestPager(session, &sleepLog{}).Search(context.Background(), testWindow)
	if records != nil {
		t.Fatalf("expected no partial records, got %d", len(records))
	}
	var werr *domain.WindowError
	if !errors.As(err, &werr) {
		t.Fatalf("expected WindowError, got %v", err)
	}
	if werr.LastPage != 1 || werr.Query != "bitcoin" || !werr.From.Equal(testWindow.From) {
		t.Fatalf("unexpected window context %+v", werr)
	}
	if session.closed != 1 {
		t.Fatalf("session closed %d times", session.closed)
	}
}

func TestSearchExtractErrorAbortsWindow(t *testing.T) {
	session := &fakeSession{failAt: -1, pages: map[int]string{0: "BROKEN"}}
	_, err := newTestPager(session, &sleepLog{}).Search(context.Background(), testWindow)
	var perr *domain.MalformedPageError
	if !errors.As(err, &perr) {
		t.Fatalf("expected MalformedPageError in chain, got %v", err)
	}
	var werr *domain.WindowError
	if !errors.As(err, &werr) || werr.LastPage != -1 {
		t.Fatalf("expected WindowError with LastPage -1, got %v", err)
	}
	if session.closed != 1 {
		t.Fatalf("session closed %d times", session.closed)
	}
}

func TestSearchSessionStartError(t *testing.T) {
	startErr := &domain.SessionStartError{ExecPath: "/nope", Err: errors.New("exec: not found")}
	open := func(context.Context) (repository.Session, error) { return nil, startErr }
	_, err := NewPager(open, pageExtractor{}).Search(context.Background(), testWindow)
	var serr *domain.SessionStartError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SessionStartError, got %v", err)
	}
}

func TestSearchCancelledDuringDelayClosesSession(t *testing.T) {
	session := &fakeSession{failAt: -1, pages: map[int]string{0: "a", 1: "b"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPager(func(context.Context) (repository.Session, error) { return session, nil }, pageExtractor{})
	_, err := p.Search(ctx, testWindow)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if session.closed != 1 {
		t.Fatalf("session closed %d times", session.closed)
	}
}
