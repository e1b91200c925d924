package question

import "errors"

// Error kinds returned by Service and Selector. Callers match them with errors.Is.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrUnprocessable    = errors.New("unprocessable entity")
	ErrNotFound         = errors.New("resource not found")
	ErrNoMoreQuestions  = errors.New("no more questions")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ErrRecordNotFound is returned by Store implementations when a lookup matches no row.
var ErrRecordNotFound = errors.New("record not found")
