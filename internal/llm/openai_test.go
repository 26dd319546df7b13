package llm

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openAIStub serves one canned chat completion and captures the request body.
func openAIStub(t *testing.T, status int, reply map[string]any) (*OpenAIProvider, *map[string]any) {
	t.Helper()
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)

	oc := openai.DefaultConfig("test-key")
	oc.BaseURL = srv.URL + "/v1"
	return &OpenAIProvider{client: openai.NewClientWithConfig(oc), model: "gpt-4o-mini"}, &got
}

func completion(content, finish string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestOpenAIProvider_SendsSystemAndUserText(t *testing.T) {
	p, got := openAIStub(t, http.StatusOK, completion("El seno de 30° es 1/2.", "stop"))

	resp, err := p.Generate(t.Context(), Request{
		System:    "Eres un tutor de trigonometría.",
		User:      "¿Cuánto vale sen(30°)?",
		MaxTokens: 256,
	})
	require.NoError(t, err)
	assert.Equal(t, "El seno de 30° es 1/2.", resp.Text)
	assert.Equal(t, StopEnd, resp.Stop)
	assert.Equal(t, Usage{InputTokens: 40, OutputTokens: 25, TotalTokens: 65}, resp.Usage)

	msgs, _ := (*got)["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
	assert.Equal(t, "¿Cuánto vale sen(30°)?", msgs[1].(map[string]any)["content"])
	assert.Nil(t, (*got)["response_format"])
}

func TestOpenAIProvider_SendsStrictSchemaAndReturnsRawText(t *testing.T) {
	p, got := openAIStub(t, http.StatusOK, completion("not json at all", "stop"))

	resp, err := p.Generate(t.Context(), Request{
		User:   "Radianes",
		Schema: &Schema{Name: "openai-raw", Description: "raw", Root: Object("", Prop("a", String("")))},
	})
	require.NoError(t, err, "providers do not validate")
	assert.Equal(t, "not json at all", resp.Text)

	format, _ := (*got)["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	js, _ := format["json_schema"].(map[string]any)
	assert.Equal(t, "openai-raw", js["name"])
	assert.Equal(t, true, js["strict"])
}

func TestOpenAIProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reply  map[string]any
		check  func(t *testing.T, err error)
	}{
		{
			name:   "rate limit",
			status: http.StatusTooManyRequests,
			reply:  map[string]any{"error": map[string]any{"type": "tokens", "message": "Rate limit exceeded", "code": "rate_limit_exceeded"}},
			check: func(t *testing.T, err error) {
				var rl *ErrRateLimit
				assert.ErrorAs(t, err, &rl)
			},
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			reply:  map[string]any{"error": map[string]any{"type": "server_error", "message": "boom"}},
			check: func(t *testing.T, err error) {
				var unavailable *ErrProviderUnavailable
				assert.ErrorAs(t, err, &unavailable)
			},
		},
		{
			name:   "truncated",
			status: http.StatusOK,
			reply:  completion(`{"body":"# Ley`, "length"),
			check: func(t *testing.T, err error) {
				var trunc *ErrMaxTokensExceeded
				require.ErrorAs(t, err, &trunc)
				assert.Equal(t, `{"body":"# Ley`, trunc.Raw)
			},
		},
		{
			name:   "no choices",
			status: http.StatusOK,
			reply:  map[string]any{"model": "gpt-4o-mini", "choices": []any{}},
			check: func(t *testing.T, err error) {
				var inv *ErrInvalidResponse
				assert.True(t, errors.As(err, &inv))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := openAIStub(t, tt.status, tt.reply)
			_, err := p.Generate(t.Context(), Request{User: "test", MaxTokens: 100})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestNewOpenAIProvider(t *testing.T) {
	_, err := NewOpenAIProvider(OpenAIConfig{})
	assert.Error(t, err)

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4o", BaseURL: "https://proxy.example/v1"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", p.ModelID())
}

func TestNewOpenRouterProvider(t *testing.T) {
	_, err := NewOpenRouterProvider(OpenRouterConfig{Model: "google/gemini-2.5-flash"})
	assert.Error(t, err)

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "meta-llama/llama-3.1-8b-instruct"})
	require.NoError(t, err)
	assert.Equal(t, "meta-llama/llama-3.1-8b-instruct", p.ModelID())
}
