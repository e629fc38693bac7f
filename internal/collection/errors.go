package collection

import "errors"

var (
	// ErrInputNotFound is returned when an input file or directory does not exist.
	ErrInputNotFound = errors.New("input not found")

	// ErrMalformedInput is returned when an input file is not valid JSON.
	ErrMalformedInput = errors.New("malformed input")
)
