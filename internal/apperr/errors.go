package apperr

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrNoGraph     = errors.New("no graph loaded")
	ErrUnavailable = errors.New("provider unavailable")
)
