package gallra

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrNotFound is returned when a folder or photo does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a rename would overwrite an existing file.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalid is returned for malformed requests, names, and out-of-range tags.
	ErrInvalid = errors.New("invalid argument")
)

// ParseError is returned when a persisted JSON document cannot be decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Error kinds, as reported by Kind.
const (
	KindNotFound      = "not_found"
	KindAlreadyExists = "already_exists"
	KindInvalid       = "invalid"
	KindParse         = "parse"
	KindIO            = "io"
)

// Kind classifies err for callers that only see strings.
func Kind(err error) string {
	var pe *ParseError
	switch {
	case errors.As(err, &pe):
		return KindParse
	case errors.Is(err, ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, fs.ErrExist):
		return KindAlreadyExists
	case errors.Is(err, ErrInvalid):
		return KindInvalid
	default:
		return KindIO
	}
}
