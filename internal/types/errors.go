package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrUnknownSource = errors.New("unrecognized listing source")
	ErrMissingField  = errors.New("required field markup not found")
	ErrBadNumber     = errors.New("value is not a number")
	ErrInvalidURL    = errors.New("invalid URL")
)

// FetchError wraps errors that occur during fetching.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError wraps errors that occur while building a document from a body.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ExtractError reports a required listing field that could not be extracted.
type ExtractError struct {
	URL    string
	Source string
	Field  string
	Err    error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract %s from %s listing %s: %v", e.Field, e.Source, e.URL, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// SourceError is returned when a listing link matches no known source site.
// It always wraps ErrUnknownSource.
type SourceError struct {
	Href string
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnknownSource, e.Href)
}

func (e *SourceError) Unwrap() error { return ErrUnknownSource }

// StorageError wraps errors that occur during storage/export.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
