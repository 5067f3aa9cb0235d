package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"cryptonews/internal/domain"
	"cryptonews/internal/repository"
	"cryptonews/internal/usecase"
)

// ScrapeRequest is the JSON body of POST /search.
type ScrapeRequest struct {
	Query     string `json:"query"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
	// CryptoID is the foreign key stored with the rows when Save is set.
	CryptoID int  `json:"crypto_id"`
	Save     bool `json:"save"`
}

type NewsRow struct {
	Row         int    `json:"row"`
	Title       string `json:"title"`
	Media       string `json:"media"`
	NewsDate    string `json:"news_date"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

type ScrapeResponse struct {
	Message string    `json:"message"`
	RunID   string    `json:"run_id,omitempty"`
	Dropped int       `json:"dropped"`
	News    []NewsRow `json:"news"`
}

// ScrapeHandler serves one search window per request.
type ScrapeHandler struct {
	search  usecase.NewsSearch
	store   repository.Store
	timeout time.Duration
	logger  *slog.Logger
}

// NewScrapeHandler builds the handler. store may be nil, in which case save requests are rejected.
func NewScrapeHandler(search usecase.NewsSearch, store repository.Store, logger *slog.Logger) *ScrapeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScrapeHandler{search: search, store: store, timeout: 30 * time.Minute, logger: logger}
}

func (h *ScrapeHandler) Register(e *echo.Echo) {
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.POST("/search", h.HandleScrape)
}

func (h *ScrapeHandler) HandleScrape(c echo.Context) error {
	var req ScrapeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	from, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid start_date format, use YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid end_date format, use YYYY-MM-DD")
	}
	if req.Save && h.store == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "storage is not configured")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	window := domain.SearchWindow{Query: req.Query, From: from, To: to}
	h.logger.Info("search request", "query", req.Query, "from", req.StartDate, "to", req.EndDate)

	table, err := h.search.Execute(ctx, window)
	if err != nil {
		return h.searchError(err)
	}

	resp := ScrapeResponse{Dropped: table.Dropped, News: toRows(table)}
	if req.Save {
		resp.RunID = uuid.NewString()
		if err := h.store.SaveNews(ctx, req.CryptoID, resp.RunID, table); err != nil {
			h.logger.Error("save news", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to save news")
		}
	}
	resp.Message = messageFor(table.Len(), req.Save)
	return c.JSON(http.StatusOK, resp)
}

func (h *ScrapeHandler) searchError(err error) error {
	var (
		startErr  *domain.SessionStartError
		windowErr *domain.WindowError
	)
	switch {
	case errors.Is(err, usecase.ErrInvalidDateRange), errors.Is(err, usecase.ErrEmptyQuery):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.As(err, &startErr):
		h.logger.Error("browser unavailable", "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "browser session could not be started")
	case errors.As(err, &windowErr):
		h.logger.Error("search window failed", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		h.logger.Error("search failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func toRows(t domain.ResultTable) []NewsRow {
	rows := make([]NewsRow, 0, t.Len())
	for _, r := range t.Records {
		rows = append(rows, NewsRow{
			Row:         r.Row,
			Title:       r.Title,
			Media:       r.Media,
			NewsDate:    r.NewsDate(),
			Description: r.Description,
			Link:        r.Link,
		})
	}
	return rows
}

func messageFor(n int, saved bool) string {
	switch {
	case n == 0:
		return "search successful, 0 articles found"
	case saved:
		return "search successful, articles saved"
	default:
		return "search successful"
	}
}
