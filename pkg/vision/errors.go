package vision

import "errors"

var (
	// ErrAPIKeyRequired is returned when no API key is configured.
	ErrAPIKeyRequired = errors.New("API key is required")
	// ErrAnalysisFailed is returned when the model produced no usable answer.
	ErrAnalysisFailed = errors.New("analysis failed")
	// ErrRateLimitExceeded is returned when the API rate limit is hit.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrEmptyImage is returned when no image bytes were provided.
	ErrEmptyImage = errors.New("image is empty")
)
