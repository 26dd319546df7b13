package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anthropicStub(t *testing.T, status int, reply map[string]any) (*AnthropicProvider, *map[string]any) {
	t.Helper()
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(srv.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{client: &client, model: "claude-haiku-4-5-20251001"}, &got
}

func message(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func TestAnthropicProvider_Generate(t *testing.T) {
	raw := `{"is_relevant":false,"suggested_topics":["Ley de Senos","Círculo Unitario","Teorema de Pitágoras"]}`
	p, got := anthropicStub(t, http.StatusOK, message(raw, "end_turn"))

	resp, err := p.Generate(t.Context(), Request{
		System: "Eres un asistente de tutoría.",
		User:   "Historia de Roma",
		Schema: &Schema{Name: "anthropic-schema", Root: Object("", Prop("a", String("")))},
	})
	require.NoError(t, err)
	assert.Equal(t, raw, resp.Text)
	assert.Equal(t, StopEnd, resp.Stop)
	assert.Equal(t, 80, resp.Usage.TotalTokens)

	assert.Equal(t, float64(anthropicMaxTokens), (*got)["max_tokens"])
	msgs, _ := (*got)["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].(map[string]any)["role"])

	oc, _ := (*got)["output_config"].(map[string]any)
	format, _ := oc["format"].(map[string]any)
	schema, _ := format["schema"].(map[string]any)
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, false, schema["additionalProperties"])
}

func TestAnthropicProvider_Errors(t *testing.T) {
	t.Run("rate limit", func(t *testing.T) {
		p, _ := anthropicStub(t, http.StatusTooManyRequests, map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "rate_limit_error", "message": "Rate limit exceeded"},
		})
		_, err := p.Generate(t.Context(), Request{User: "test"})
		var rl *ErrRateLimit
		assert.ErrorAs(t, err, &rl)
	})

	t.Run("server error", func(t *testing.T) {
		p, _ := anthropicStub(t, http.StatusInternalServerError, map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "api_error", "message": "Internal server error"},
		})
		_, err := p.Generate(t.Context(), Request{User: "test"})
		var unavailable *ErrProviderUnavailable
		assert.ErrorAs(t, err, &unavailable)
	})

	t.Run("truncated", func(t *testing.T) {
		p, _ := anthropicStub(t, http.StatusOK, message(`{"body":"# Iden`, "max_tokens"))
		_, err := p.Generate(t.Context(), Request{User: "test"})
		var trunc *ErrMaxTokensExceeded
		require.ErrorAs(t, err, &trunc)
		assert.Equal(t, `{"body":"# Iden`, trunc.Raw)
	})
}

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "claude-sonnet-4-20250514", resolveModel("claude-sonnet", anthropicModels))
	assert.Equal(t, "claude-haiku-4-5-20251001", resolveModel("claude-haiku", anthropicModels))
	assert.Equal(t, "claude-3-opus", resolveModel("claude-3-opus", anthropicModels))
	assert.Equal(t, "gemini-2.5-flash", resolveModel("gemini-flash", geminiModels))
}
