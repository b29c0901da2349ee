package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")
	// ErrCacheMiss is returned when a price baseline is absent or expired
	ErrCacheMiss = errors.New("cache miss")
	// ErrOCRUnavailable is returned when no OCR backend is configured or reachable
	ErrOCRUnavailable = errors.New("OCR service unavailable")
	// ErrNoTextRecognized is returned when OCR ran but recovered no text
	ErrNoTextRecognized = errors.New("no text recognized in image")
	// ErrEmptyImage is returned when OCR is asked to read an empty image
	ErrEmptyImage = errors.New("empty image")
	// ErrCorpusUnavailable is returned when the classifier corpus cannot be loaded
	ErrCorpusUnavailable = errors.New("classifier corpus unavailable")
	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrPipelineFailure wraps unexpected failures inside the verification pipeline
	ErrPipelineFailure = errors.New("verification pipeline failed")
)
