// Package normalizer turns the date labels printed on search result pages into
// calendar dates.
package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"cryptonews/internal/domain"
)

const (
	agoMarker = "atrás"

	// monthApprox is a fixed 30 days per month, not a calendar month.
	monthApprox = 30 * 24 * time.Hour

	absoluteLayout = "2 January 2006"
)

var relativePattern = regexp.MustCompile(`^(\d+)\s+(\p{L}+)\s+atrás`)

var abbreviatedMonths = map[string]string{
	"jan.": "January",
	"fev.": "February",
	"mar.": "March",
	"abr.": "April",
	"mai.": "May",
	"jun.": "June",
	"jul.": "July",
	"ago.": "August",
	"set.": "September",
	"out.": "October",
	"nov.": "November",
	"dez.": "December",
}

// Normalizer resolves relative ("5 dias atrás") and absolute ("05 de jan. de 2024")
// date labels.
type Normalizer struct {
	now func() time.Time
}

type Option func(*Normalizer)

// WithClock fixes the reference instant relative dates are resolved against.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

func New(opts ...Option) *Normalizer {
	n := &Normalizer{now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize parses raw into a date. Failures are *domain.DateParseError.
func (n *Normalizer) Normalize(raw string) (time.Time, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return time.Time{}, &domain.DateParseError{Raw: raw, Reason: "empty date text"}
	}
	if strings.Contains(text, agoMarker) {
		return n.relative(raw, text)
	}
	return absolute(raw, text)
}

// Canonical is Normalize rendered as day/month/year.
func (n *Normalizer) Canonical(raw string) (string, error) {
	t, err := n.Normalize(raw)
	if err != nil {
		return "", err
	}
	return t.Format(domain.CanonicalDateLayout), nil
}

func (n *Normalizer) relative(raw, text string) (time.Time, error) {
	m := relativePattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, &domain.DateParseError{Raw: raw, Reason: "invalid relative date format"}
	}
	amount, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, &domain.DateParseError{Raw: raw, Reason: "invalid amount", Err: err}
	}
	unit, ok := unitDuration(strings.ToLower(m[2]))
	if !ok {
		return time.Time{}, &domain.DateParseError{Raw: raw, Reason: "unknown unit " + strconv.Quote(m[2])}
	}
	return n.now().Add(-time.Duration(amount) * unit), nil
}

func unitDuration(unit string) (time.Duration, bool) {
	switch {
	case strings.Contains(unit, "dia"):
		return 24 * time.Hour, true
	case strings.Contains(unit, "semana"):
		return 7 * 24 * time.Hour, true
	case strings.Contains(unit, "hora"):
		return time.Hour, true
	case strings.Contains(unit, "mês"), strings.Contains(unit, "meses"):
		return monthApprox, true
	}
	return 0, false
}

// absolute expects "DD de <abbr.> de YYYY".
func absolute(raw, text string) (time.Time, error) {
	parts := strings.Split(text, " de ")
	if len(parts) != 3 {
		return time.Time{}, &domain.DateParseError{Raw: raw, Reason: "expected day de month de year"}
	}
	month, ok := abbreviatedMonths[strings.ToLower(strings.TrimSpace(parts[1]))]
	if !ok {
		return time.Time{}, &domain.DateParseError{Raw: raw, Reason: "unknown month abbreviation " + strconv.Quote(parts[1])}
	}
	expanded := strings.TrimSpace(parts[0]) + " " + month + " " + strings.TrimSpace(parts[2])
	t, err := time.Parse(absoluteLayout, expanded)
	if err != nil {
		return time.Time{}, &domain.DateParseError{Raw: raw, Reason: "invalid absolute date", Err: err}
	}
	return t, nil
}
