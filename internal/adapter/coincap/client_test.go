package coincap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cryptonews/internal/adapter/httpclient"
)

func TestAssetSendsAuthAndUnwrapsData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/assets/bitcoin" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		w.Write([]byte(`{"data":{"id":"bitcoin","rank":"1","symbol":"BTC","name":"Bitcoin","priceUsd":"42000.1","maxSupply":null},"timestamp":1}`))
	}))
	defer srv.Close()

	c := NewClient(httpclient.NewHTTPClient(), srv.URL, "secret")
	asset, err := c.Asset(context.Background(), "bitcoin")
	if err != nil {
		t.Fatalf("Asset: %v", err)
	}
	if asset.Symbol != "BTC" || asset.PriceUsd == nil || *asset.PriceUsd != "42000.1" || asset.MaxSupply != nil {
		t.Fatalf("unexpected asset %+v", asset)
	}
}

func TestPriceHistoryQuery(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/assets/ethereum/history" || q.Get("interval") != "d1" ||
			q.Get("start") != "1704067200000" || q.Get("end") != "1735603200000" {
			t.Errorf("unexpected request %s", r.URL)
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("no key configured but Authorization sent")
		}
		w.Write([]byte(`{"data":[{"priceUsd":"2300.5","time":1704067200000,"date":"2024-01-01T00:00:00.000Z"}]}`))
	}))
	defer srv.Close()

	points, err := NewClient(srv.Client(), srv.URL, "").PriceHistory(context.Background(), "ethereum", from, to)
	if err != nil {
		t.Fatalf("PriceHistory: %v", err)
	}
	if len(points) != 1 || points[0].PriceUsd != "2300.5" || !points[0].Date.Equal(from) {
		t.Fatalf("unexpected points %+v", points)
	}
}

func TestMarketsLimitAndStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "2000" {
			t.Errorf("limit = %q", r.URL.Query().Get("limit"))
		}
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.Client(), srv.URL, "").Markets(context.Background(), "bitcoin")
	var serr *StatusError
	if !errors.As(err, &serr) || serr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected StatusError 429, got %v", err)
	}
}

func TestEmptyDataIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":null}`))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.Client(), srv.URL, "").Asset(context.Background(), "nope"); err == nil {
		t.Fatalf("expected error for null data")
	}
}
