package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrNilProfile is returned when GenerateQuestions is called without
	// a profile.
	ErrNilProfile = errors.New("profile cannot be nil")

	// ErrInvalidCount is returned when the requested question count is
	// not positive.
	ErrInvalidCount = errors.New("question count must be positive")
)
