package llm

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// rateLimitMarkers are substrings that identify a quota or rate-limit
// failure in an error message, whatever transport produced it.
var rateLimitMarkers = []string{"429", "RESOURCE_EXHAUSTED"}

// ErrRateLimit indicates the provider returned a rate limit or quota error.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.Err == nil {
		return "rate limited (429)"
	}
	return fmt.Sprintf("rate limited (429): %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse means the backend answered with text that does not
// match the requested shape. Raw keeps the text for diagnosis.
type ErrInvalidResponse struct {
	Raw string
	Err error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable means the backend could not be reached or
// answered with a non-success status.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded means the answer was cut off at the token limit.
// Raw holds the partial text.
type ErrMaxTokensExceeded struct {
	Raw string
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// IsRateLimit reports whether err is a rate-limit failure, either typed
// as *ErrRateLimit or carrying a rate-limit marker in its message.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	var rl *ErrRateLimit
	if errors.As(err, &rl) {
		return true
	}
	msg := err.Error()
	for _, m := range rateLimitMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
