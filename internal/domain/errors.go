package domain

import (
	"fmt"
	"time"
)

// SessionStartError reports that the browser process could not be acquired.
type SessionStartError struct {
	ExecPath string
	Err      error
}

func (e *SessionStartError) Error() string {
	if e.ExecPath == "" {
		return fmt.Sprintf("browser session start: %v", e.Err)
	}
	return fmt.Sprintf("browser session start (%s): %v", e.ExecPath, e.Err)
}

func (e *SessionStartError) Unwrap() error { return e.Err }

// MalformedPageError reports a document that could not be parsed as markup at all.
type MalformedPageError struct {
	Reason string
	Err    error
}

func (e *MalformedPageError) Error() string {
	if e.Err == nil {
		return "malformed page: " + e.Reason
	}
	return fmt.Sprintf("malformed page: %s: %v", e.Reason, e.Err)
}

func (e *MalformedPageError) Unwrap() error { return e.Err }

// DateParseError reports date text matching neither the relative nor the absolute form.
type DateParseError struct {
	Raw    string
	Reason string
	Err    error
}

func (e *DateParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("parse date %q: %s", e.Raw, e.Reason)
	}
	return fmt.Sprintf("parse date %q: %s: %v", e.Raw, e.Reason, e.Err)
}

func (e *DateParseError) Unwrap() error { return e.Err }

// WindowError carries the context of a search window that failed as a unit.
type WindowError struct {
	Query string
	From  time.Time
	To    time.Time
	// LastPage is the index of the last page fetched and extracted successfully, -1 if none.
	LastPage int
	Err      error
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("search window %q [%s..%s] failed after page %d: %v",
		e.Query, e.From.Format("2006-01-02"), e.To.Format("2006-01-02"), e.LastPage, e.Err)
}

func (e *WindowError) Unwrap() error { return e.Err }
