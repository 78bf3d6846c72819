// Package entity defines the entities and errors used in the application.
// It includes the URL struct, which represents a shortened URL together with
// its visit statistics, and the error categories every operation reports.
package entity

import (
	"errors"
	"time"
)

var (
	// ErrInvalidInput is returned when caller-supplied data fails a precondition,
	// for example an empty original URL.
	ErrInvalidInput = errors.New("invalid input")
	// ErrURLNotFound is returned when a short token or original URL has no matching record.
	ErrURLNotFound = errors.New("url not found")
	// ErrInternal is returned for unexpected storage failures and for exhausting
	// the short token generation attempts.
	ErrInternal = errors.New("internal error")

	// ErrShortTokenExists is returned by storage when a record with the same short token
	// is already present. It never leaves the usecase layer.
	ErrShortTokenExists = errors.New("short token exists")
)

// URL represents a shortened URL.
type URL struct {
	ID          string    // ID is the unique identifier of the record, assigned on creation.
	ShortToken  string    // ShortToken is the generated token that stands in for the original URL.
	OriginalURL string    // OriginalURL is the full URL that the short token resolves to.
	URLStats              // URLStats contains statistics about the URL.
	CreatedAt   time.Time // CreatedAt is the timestamp when the record was created.
}

// URLStats contains statistics related to a shortened URL.
type URLStats struct {
	VisitCount int64 // VisitCount is the number of times the short token has been resolved.
}

// Classify reports the category of err: ErrInvalidInput, ErrURLNotFound or ErrInternal.
// Errors that carry neither of the first two are internal.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidInput):
		return ErrInvalidInput
	case errors.Is(err, ErrURLNotFound):
		return ErrURLNotFound
	default:
		return ErrInternal
	}
}
