package usecase

import "errors"

var (
	ErrInvalidDateRange = errors.New("invalid date range: 'to' date must not be before 'from' date")
	ErrEmptyQuery       = errors.New("search query is required")
	ErrUnknownPolicy    = errors.New("unknown date policy: must be 'drop' or 'keep'")
)
