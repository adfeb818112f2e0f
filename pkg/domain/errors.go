package domain

import "errors"

// errors returned across the archive pipeline, always wrapped with context
var (
	ErrTransport          = errors.New("transport error")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrMalformedRecord    = errors.New("malformed record")
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	ErrNotFound           = errors.New("not found")
	ErrEmptyArchive       = errors.New("empty archive")
)
