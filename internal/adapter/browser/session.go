// Package browser drives a headless Chromium-family browser through chromedp.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"cryptonews/internal/domain"
	"cryptonews/internal/repository"
)

const defaultFetchTimeout = 60 * time.Second

// Options configures the browser process.
type Options struct {
	// ExecPath overrides browser discovery. Empty means look on PATH.
	ExecPath     string
	FetchTimeout time.Duration
	UserAgent    string
	Logger       *slog.Logger
}

// Session is one browser process with a single tab.
type Session struct {
	ctx          context.Context
	cancelTab    context.CancelFunc
	cancelAlloc  context.CancelFunc
	fetchTimeout time.Duration
	logger       *slog.Logger
	closeOnce    sync.Once
}

func findFirstExecutable(executables ...string) string {
	for _, executable := range executables {
		path, err := exec.LookPath(executable)
		if err == nil {
			return path
		}
	}
	return ""
}

// Open starts the browser eagerly so a missing or broken executable surfaces here
// as a *domain.SessionStartError rather than on the first fetch.
func Open(ctx context.Context, o Options) (*Session, error) {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("incognito", true),
	)
	if o.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(o.UserAgent))
	}

	execPath := o.ExecPath
	if execPath == "" {
		execPath = findFirstExecutable("brave", "brave-browser", "chromium", "chromium-browser", "google-chrome")
	}
	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}

	// The browser must outlive any per-call deadline on ctx.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithErrorf(func(format string, args ...any) {
		logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
	}))

	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, &domain.SessionStartError{ExecPath: execPath, Err: err}
	}

	timeout := o.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	logger.Debug("browser session started", "exec_path", execPath)

	return &Session{
		ctx:          tabCtx,
		cancelTab:    cancelTab,
		cancelAlloc:  cancelAlloc,
		fetchTimeout: timeout,
		logger:       logger,
	}, nil
}

// Opener binds Options to a repository.SessionOpener.
func Opener(o Options) repository.SessionOpener {
	return func(ctx context.Context) (repository.Session, error) {
		s, err := Open(ctx, o)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Fetch navigates to url, waits for the body to be ready and returns the whole document.
func (s *Session) Fetch(ctx context.Context, url string) (string, error) {
	taskCtx, cancel := context.WithTimeout(s.ctx, s.fetchTimeout)
	defer cancel()

	// Propagate caller cancellation into the tab without tearing down the browser.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp fetch %s: %w", url, err)
	}
	return html, nil
}

// Close shuts the browser down. Repeated calls are no-ops.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.cancelTab()
		s.cancelAlloc()
		s.logger.Debug("browser session closed")
	})
	return nil
}
