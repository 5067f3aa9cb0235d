package httpclient

import (
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

func NewHTTPClient() *http.Client {
	return NewClient(defaultTimeout)
}

func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
