package domain

import "errors"

var (
	ErrMalformedNotification = errors.New("malformed notification")
	ErrSearchFailed          = errors.New("search failed")
	ErrInvalidSelection      = errors.New("invalid selection")
	ErrUnsupportedPlatform   = errors.New("unsupported platform")
	ErrStaleSession          = errors.New("stale session")
)
