package generate

import (
	"errors"
	"fmt"

	"github.com/abhisek/trigtutor/internal/llm"
)

// Kind classifies a generation failure.
type Kind int

const (
	// KindTransport means the backend was unreachable or returned a
	// non-success status.
	KindTransport Kind = iota + 1

	// KindRateLimit means the backend refused the call for quota reasons.
	KindRateLimit

	// KindShape means the backend answered but the text does not match the
	// contracted shape.
	KindShape
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRateLimit:
		return "rate limit"
	case KindShape:
		return "shape"
	default:
		return "unknown"
	}
}

// Error is returned by every generation operation.
type Error struct {
	// Op is the operation tag of the failed prompt.
	Op string

	Kind Kind

	// Raw holds the backend text for shape failures.
	Raw string

	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a generation error, or 0 when err is not one.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return 0
}

// IsRateLimit reports whether err should be presented as a rate-limit
// failure. Errors that passed through the client are classified by their
// Kind alone, since wrappers may quote learner text in the message. Other
// errors are classified by their message.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	if kind := KindOf(err); kind != 0 {
		return kind == KindRateLimit
	}
	return llm.IsRateLimit(err)
}

// classify turns a provider error into a generation error.
func classify(op string, err error) *Error {
	var invErr *llm.ErrInvalidResponse
	if errors.As(err, &invErr) {
		return &Error{Op: op, Kind: KindShape, Raw: invErr.Raw, Err: err}
	}
	var maxErr *llm.ErrMaxTokensExceeded
	if errors.As(err, &maxErr) {
		return &Error{Op: op, Kind: KindShape, Raw: maxErr.Raw, Err: err}
	}
	if llm.IsRateLimit(err) {
		return &Error{Op: op, Kind: KindRateLimit, Err: err}
	}
	return &Error{Op: op, Kind: KindTransport, Err: err}
}
