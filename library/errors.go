package library

import "errors"

// Sentinel errors returned by catalog and codec operations.
var (
	ErrDuplicateID   = errors.New("book with this ID already exists")
	ErrNotFound      = errors.New("book not found")
	ErrAlreadyIssued = errors.New("book is already issued")
	ErrNotIssued     = errors.New("book was not issued")

	// ErrIOUnavailable is returned when the backing store cannot be opened
	// or written. The in-memory change that triggered the save is kept.
	ErrIOUnavailable = errors.New("backing store unavailable")

	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedRecord is returned by Load when stored data can't be parsed.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrUnencodable is returned by the legacy codec for values containing
	// its field or record separator.
	ErrUnencodable = errors.New("value cannot be encoded in legacy format")
)
