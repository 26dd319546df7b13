package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.5-flash",
	"gemini-pro":   "gemini-2.5-pro",
	"gemini-lite":  "gemini-2.5-flash-lite",
}

// GeminiProvider talks to the Gemini API. It is the default backend.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  resolveModel(cfg.Model, geminiModels),
	}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	contents := []*genai.Content{genai.NewContentFromText(req.User, genai.RoleUser)}
	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, geminiConfig(req))
	if err != nil {
		return nil, mapGeminiError(err)
	}

	resp := &Response{
		Text:  result.Text(),
		Model: p.model,
		Stop:  geminiStop(result),
	}
	if result.ModelVersion != "" {
		resp.Model = result.ModelVersion
	}
	if u := result.UsageMetadata; u != nil {
		resp.Usage = Usage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}
	return finish(resp)
}

func (p *GeminiProvider) ModelID() string {
	return p.model
}

func geminiConfig(req Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = buildGeminiSchema(req.Schema.Root)
	}
	return config
}

// buildGeminiSchema converts a shape contract to a genai.Schema. Property
// ordering follows the declaration order so the model emits fields in a
// stable sequence.
func buildGeminiSchema(n *Node) *genai.Schema {
	if n == nil {
		return nil
	}
	schema := &genai.Schema{
		Type:        mapGeminiType(n.Kind),
		Description: n.Description,
		Enum:        n.Enum,
		Minimum:     n.Minimum,
		Maximum:     n.Maximum,
	}

	if n.Kind == KindObject {
		schema.Properties = make(map[string]*genai.Schema, len(n.Properties))
		for name, prop := range n.Properties {
			schema.Properties[name] = buildGeminiSchema(prop)
		}
		schema.Required = append([]string(nil), n.Required...)
		schema.PropertyOrdering = append([]string(nil), n.Order...)
	}

	if n.Items != nil {
		schema.Items = buildGeminiSchema(n.Items)
	}
	if n.MinItems != nil {
		v := int64(*n.MinItems)
		schema.MinItems = &v
	}
	if n.MaxItems != nil {
		v := int64(*n.MaxItems)
		schema.MaxItems = &v
	}

	return schema
}

func mapGeminiType(k Kind) genai.Type {
	switch k {
	case KindString:
		return genai.TypeString
	case KindNumber:
		return genai.TypeNumber
	case KindInteger:
		return genai.TypeInteger
	case KindBoolean:
		return genai.TypeBoolean
	case KindArray:
		return genai.TypeArray
	case KindObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

func geminiStop(result *genai.GenerateContentResponse) Stop {
	if len(result.Candidates) > 0 && result.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		return StopMaxTokens
	}
	return StopEnd
}

// mapGeminiError classifies SDK errors. The SDK returns APIError by value.
func mapGeminiError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var ptr *genai.APIError
		if !errors.As(err, &ptr) || ptr == nil {
			return &ErrProviderUnavailable{Err: err}
		}
		apiErr = *ptr
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests, apiErr.Status == "RESOURCE_EXHAUSTED":
		return &ErrRateLimit{Err: err}
	default:
		return &ErrProviderUnavailable{Err: err}
	}
}
