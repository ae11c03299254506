package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a lookup service has no matching food
	ErrNotFound = errors.New("no matching food found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrUpstreamFailure is returned when an external request fails or returns non-2xx
	ErrUpstreamFailure = errors.New("upstream request failed")

	// ErrMalformedResponse is returned when an upstream body cannot be decoded
	ErrMalformedResponse = errors.New("malformed upstream response")

	// ErrUnparsableOutput is returned when model text holds no structured data
	ErrUnparsableOutput = errors.New("model output contained no structured data")

	// ErrMissingCredentials is returned when a required dependency has no credentials.
	// It is the only failure that aborts a request.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrEmptyQuery is returned when an item canonicalizes to nothing
	ErrEmptyQuery = errors.New("empty food query")
)

// FetchError records which resolution tier failed and why.
type FetchError struct {
	Source Source
	Op     string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Source, e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError wraps err with its tier and operation.
func NewFetchError(source Source, op string, err error) *FetchError {
	return &FetchError{Source: source, Op: op, Err: err}
}
