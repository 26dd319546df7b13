package llm

import "context"

// Provider sends one prompt to a generation backend and returns its text.
type Provider interface {
	// Generate returns the backend's answer verbatim. When req.Schema is
	// set the backend is asked for JSON of that shape; providers do not
	// check the result, callers do with ValidateResponse.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier requests are sent to.
	ModelID() string
}

// Request is a single-turn prompt: a system instruction and one user text.
type Request struct {
	System string
	User   string

	// Schema asks the backend for JSON output of this shape. Nil means
	// free text.
	Schema *Schema

	// MaxTokens caps the answer length. Zero leaves the backend default.
	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the backend default.
	Temperature float64
}

// Schema names a shape contract for structured output.
type Schema struct {
	// Name is kebab-case, e.g. "lesson-content". It is the OpenAI schema
	// name and the key of the compiled-schema cache.
	Name string

	Description string

	Root *Node
}

// Definition renders the schema root as a JSON Schema document.
func (s *Schema) Definition() map[string]any {
	return s.Root.JSONSchema()
}

// Stop normalizes why a backend stopped generating.
type Stop string

const (
	StopEnd       Stop = "end"
	StopMaxTokens Stop = "max_tokens"
)

// Response is one backend answer.
type Response struct {
	// Text is the answer exactly as returned, surrounding whitespace and
	// code fences included.
	Text string

	Usage Usage

	// Model is the model that actually served the request.
	Model string

	Stop Stop
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// finish returns resp, or ErrMaxTokensExceeded carrying the partial text
// when the backend ran out of tokens.
func finish(resp *Response) (*Response, error) {
	if resp.Stop == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Raw: resp.Text}
	}
	return resp, nil
}
