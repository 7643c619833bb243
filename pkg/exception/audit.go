package exception

import "errors"

// Audit trail decoding errors. Only file-level conditions are errors; field-level
// problems degrade to fallbacks and never reach the caller.
var (
	ErrInputNotFound = errors.New("audit: input file not found")
	ErrMalformedXML  = errors.New("audit: malformed xml")
	ErrInvalidConfig = errors.New("audit: invalid config")
)

// Store errors
var (
	ErrNilStore      = errors.New("store: nil instance")
	ErrEmptyStoreDSN = errors.New("store: empty connection string")
)
