package floorplan

import "errors"

// Error kinds returned by Analyze and ParseResponse. Use errors.Is to
// classify a failure; the wrapped message carries the details.
var (
	ErrMalformedResponse    = errors.New("malformed response")
	ErrInvalidShape         = errors.New("invalid result format")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrExternalService      = errors.New("external service error")
	ErrImageLoad            = errors.New("image load error")
)
