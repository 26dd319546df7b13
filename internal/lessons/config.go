package lessons

// Config holds lesson generation settings.
type Config struct {
	// MaxTokens caps the lesson response. Zero leaves the provider default.
	MaxTokens int

	Temperature float64
}

// DefaultConfig returns sensible defaults for lesson generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   0,
		Temperature: 0.7,
	}
}
