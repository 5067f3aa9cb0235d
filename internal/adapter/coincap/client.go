// Package coincap reads asset, price history and market data from the CoinCap API.
package coincap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cryptonews/internal/domain"
)

const DefaultBaseURL = "https://api.coincap.io/v2"

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("coincap %s: status %d: %s", e.URL, e.StatusCode, e.Body)
}

type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func NewClient(httpClient *http.Client, baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: httpClient, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

// Asset returns the summary of one asset, e.g. "bitcoin".
func (c *Client) Asset(ctx context.Context, id string) (domain.Asset, error) {
	var asset domain.Asset
	err := c.get(ctx, "/assets/"+url.PathEscape(id), nil, &asset)
	return asset, err
}

// PriceHistory returns daily prices between from and to.
func (c *Client) PriceHistory(ctx context.Context, id string, from, to time.Time) ([]domain.PricePoint, error) {
	params := url.Values{}
	params.Set("interval", "d1")
	params.Set("start", strconv.FormatInt(from.UnixMilli(), 10))
	params.Set("end", strconv.FormatInt(to.UnixMilli(), 10))

	var points []domain.PricePoint
	err := c.get(ctx, "/assets/"+url.PathEscape(id)+"/history", params, &points)
	return points, err
}

// Markets returns up to 2000 exchange listings of an asset.
func (c *Client) Markets(ctx context.Context, id string) ([]domain.Market, error) {
	params := url.Values{}
	params.Set("limit", "2000")

	var markets []domain.Market
	err := c.get(ctx, "/assets/"+url.PathEscape(id)+"/markets", params, &markets)
	return markets, err
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("coincap %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{URL: target, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("coincap %s: decode: %w", path, err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return fmt.Errorf("coincap %s: empty data", path)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("coincap %s: decode data: %w", path, err)
	}
	return nil
}
