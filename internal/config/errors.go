package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and allow callers to use
// errors.Is() for programmatic error handling.
var (
	// ErrNoInputDir is returned when no input directory is specified.
	ErrNoInputDir = errors.New("no input directory specified: provide a directory of 10-K filings")

	// ErrNoOutputDir is returned when the output directory is empty.
	ErrNoOutputDir = errors.New("no output directory specified")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMarker is returned when a section marker is not a valid regular expression.
	ErrInvalidMarker = errors.New("invalid section marker")

	// ErrInvalidHeaderPattern is returned when the page header pattern does not compile.
	ErrInvalidHeaderPattern = errors.New("invalid header pattern")

	// ErrInvalidClassifierEndpoint is returned when the classifier endpoint is
	// not an absolute http or https URL.
	ErrInvalidClassifierEndpoint = errors.New("invalid classifier endpoint: must be an http or https URL")

	// ErrInvalidMaxChars is returned when the classifier input limit is not positive.
	ErrInvalidMaxChars = errors.New("invalid classifier max chars: must be positive")

	// ErrInvalidRateLimit is returned when the classifier rate limit is negative.
	// Zero disables rate limiting.
	ErrInvalidRateLimit = errors.New("invalid classifier rate limit: must be non-negative")

	// ErrInvalidTimeout is returned when the classifier timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid classifier timeout: must be positive")

	// ErrInvalidReportLimit is returned when a report list length is negative.
	ErrInvalidReportLimit = errors.New("invalid report limit: must be non-negative")

	// ErrInvalidMinConfidence is returned when the sentence confidence floor
	// is outside [0, 1].
	ErrInvalidMinConfidence = errors.New("invalid min confidence: must be between 0 and 1")
)
