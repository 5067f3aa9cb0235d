package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"cryptonews/internal/domain"
)

type fakeMarket struct {
	failAsset string
}

func (f *fakeMarket) Asset(_ context.Context, id string) (domain.Asset, error) {
	if id == f.failAsset {
		return domain.Asset{}, errors.New("asset unavailable")
	}
	return domain.Asset{ID: id, Name: strings.ToUpper(id)}, nil
}

func (f *fakeMarket) PriceHistory(_ context.Context, id string, from, to time.Time) ([]domain.PricePoint, error) {
	return []domain.PricePoint{{PriceUsd: "1", Date: from}, {PriceUsd: "2", Date: to}}, nil
}

func (f *fakeMarket) Markets(context.Context, string) ([]domain.Market, error) {
	return []domain.Market{{ExchangeID: "binance"}}, nil
}

type fakeNews struct {
	windows []domain.SearchWindow
	failTo  time.Month
}

func (f *fakeNews) Execute(_ context.Context, w domain.SearchWindow) (domain.ResultTable, error) {
	f.windows = append(f.windows, w)
	if w.To.Month() == f.failTo {
		return domain.ResultTable{}, &domain.WindowError{Query: w.Query, From: w.From, To: w.To, LastPage: -1, Err: errors.New("blocked")}
	}
	return domain.ResultTable{Window: w, Records: []domain.NewsRecord{{Title: w.Query}}}, nil
}

type memStore struct {
	ops []string
}

func (m *memStore) SaveAsset(_ context.Context, a domain.Asset) error {
	m.ops = append(m.ops, "asset:"+a.ID)
	return nil
}

func (m *memStore) SavePrices(_ context.Context, id int, p []domain.PricePoint) error {
	m.ops = append(m.ops, fmt.Sprintf("prices:%d:%d", id, len(p)))
	return nil
}

func (m *memStore) SaveMarkets(_ context.Context, id int, ms []domain.Market) error {
	m.ops = append(m.ops, fmt.Sprintf("markets:%d:%d", id, len(ms)))
	return nil
}

func (m *memStore) SaveNews(_ context.Context, id int, runID string, t domain.ResultTable) error {
	m.ops = append(m.ops, fmt.Sprintf("news:%d:%s:%s", id, runID, t.Window.To.Format("01-02")))
	return nil
}

func (m *memStore) Close(context.Context) error { return nil }

func TestHalfYearWindows(t *testing.T) {
	w := HalfYearWindows("bitcoin", 2024)
	if len(w) != 2 {
		t.Fatalf("expected 2 windows")
	}
	got := fmt.Sprintf("%s %s %s %s", w[0].From.Format("01/02"), w[0].To.Format("01/02"), w[1].From.Format("01/02"), w[1].To.Format("01/02"))
	if got != "01/01 06/30 07/01 12/31" {
		t.Fatalf("unexpected windows %s", got)
	}
}

func TestCollectRunsEveryStepInOrder(t *testing.T) {
	store := &memStore{}
	news := &fakeNews{}
	svc := NewCollectService(&fakeMarket{}, news, store, 2024, nil)
	svc.newID = func() string { return "r" }

	if err := svc.Run(context.Background(), []string{"bitcoin", "ethereum"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{
		"asset:bitcoin", "prices:0:2", "markets:0:1", "news:0:r:06-30", "news:0:r:12-31",
		"asset:ethereum", "prices:1:2", "markets:1:1", "news:1:r:06-30", "news:1:r:12-31",
	}
	if strings.Join(store.ops, ",") != strings.Join(want, ",") {
		t.Fatalf("ops = %v\nwant %v", store.ops, want)
	}
	if len(news.windows) != 4 || news.windows[2].Query != "ethereum" {
		t.Fatalf("unexpected windows %+v", news.windows)
	}
}

func TestCollectContinuesPastFailures(t *testing.T) {
	store := &memStore{}
	svc := NewCollectService(&fakeMarket{failAsset: "bitcoin"}, &fakeNews{failTo: time.June}, store, 2024, nil)
	svc.newID = func() string { return "r" }

	err := svc.Run(context.Background(), []string{"bitcoin"})
	if err == nil {
		t.Fatalf("expected joined error")
	}
	var werr *domain.WindowError
	if !errors.As(err, &werr) || werr.Query != "bitcoin" {
		t.Fatalf("window error not surfaced: %v", err)
	}
	if !strings.Contains(err.Error(), "asset unavailable") {
		t.Fatalf("details error not surfaced: %v", err)
	}
	want := "prices:0:2,markets:0:1,news:0:r:12-31"
	if got := strings.Join(store.ops, ","); got != want {
		t.Fatalf("ops = %s, want %s", got, want)
	}
}

func TestCollectStopsOnCancelledContext(t *testing.T) {
	store := &memStore{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewCollectService(&fakeMarket{}, &fakeNews{}, store, 2024, nil).Run(ctx, []string{"bitcoin"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(store.ops) != 0 {
		t.Fatalf("nothing should be stored, got %v", store.ops)
	}
}
