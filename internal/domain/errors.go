package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrRead signals that a tabular source could not be loaded or parsed.
	ErrRead = errors.New("read error")
	// ErrUnsupportedFormat signals a file extension no reader handles.
	ErrUnsupportedFormat = errors.New("unsupported tabular format")
	// ErrRaggedTable signals rows or columns that do not line up with the header.
	ErrRaggedTable = errors.New("ragged table")
	// ErrEmptySource signals a source without a header row.
	ErrEmptySource = errors.New("no columns to parse from source")
	// ErrSearchProviderError signals a web search provider failure.
	ErrSearchProviderError = errors.New("search provider error")
	// ErrSearchDisabled signals that no usable search API key is configured.
	ErrSearchDisabled = errors.New("web search is disabled")
	// ErrInvalidInput signals a malformed request from a caller.
	ErrInvalidInput = errors.New("invalid input")
)

// ReadError wraps a load failure with the offending path. It matches ErrRead.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrRead.Error(), e.Path, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *ReadError) Unwrap() error { return e.Err }

// Is reports ErrRead so callers can match without errors.As.
func (e *ReadError) Is(target error) bool { return target == ErrRead }

// NewReadError creates a read error for path. Returns err unchanged if it already is one.
func NewReadError(path string, err error) error {
	var re *ReadError
	if errors.As(err, &re) {
		return err
	}
	return &ReadError{Path: path, Err: err}
}
