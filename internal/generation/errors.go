package generation

import "errors"

// Sentinel errors returned by Generator implementations. Callers match
// with errors.Is.
var (
	// ErrInvalidConfig indicates the generator was constructed with
	// unusable configuration (missing API key, empty model name).
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrGenerationFailed indicates the backend call failed after
	// exhausting retries.
	ErrGenerationFailed = errors.New("question generation failed")

	// ErrInvalidResponse indicates the backend responded but the payload
	// could not be parsed into any valid question.
	ErrInvalidResponse = errors.New("invalid generation response")

	// ErrContentBlocked indicates the backend refused the request on
	// safety grounds. Not retryable.
	ErrContentBlocked = errors.New("generation blocked by content filters")

	// ErrTransientFailure marks failures worth retrying, such as rate
	// limits or temporary server errors.
	ErrTransientFailure = errors.New("transient generation failure")
)
