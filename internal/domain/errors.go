package domain

import "errors"

var (
	// ErrNotFound is returned when a notebook does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned for requests the service refuses to process.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoText is returned when no text could be extracted from a document.
	ErrNoText = errors.New("no text could be extracted from the document")
)
