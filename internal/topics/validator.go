// Package topics decides whether a requested topic is in scope for the
// tutor.
package topics

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/abhisek/trigtutor/internal/domain"
	"github.com/abhisek/trigtutor/internal/generate"
	"github.com/abhisek/trigtutor/internal/prompt"
)

// FallbackSuggestions are offered when the model's verdict cannot be read.
var FallbackSuggestions = []string{"Ley de Senos", "Círculo Unitario", "Teorema de Pitágoras"}

// Validator checks topic relevance through the generation backend.
type Validator struct {
	client *generate.Client
	log    *zap.Logger
}

// NewValidator creates a topic validator.
func NewValidator(client *generate.Client, log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{client: client, log: log}
}

// Validate reports whether topic is trigonometry or general mathematics.
//
// An unreadable verdict is not an error: the topic is treated as not
// relevant and the fixed suggestions are returned. That fallback is never
// cached. Transport and rate-limit failures are returned as errors.
func (v *Validator) Validate(ctx context.Context, topic string) (domain.TopicValidationResult, error) {
	result, err := generate.Structured[domain.TopicValidationResult](ctx, v.client, prompt.TopicValidation(topic), nil)
	if err == nil {
		if result.SuggestedTopics == nil {
			result.SuggestedTopics = []string{}
		}
		return result, nil
	}

	if generate.KindOf(err) == generate.KindShape {
		v.log.Warn("topic validation unreadable, using fallback suggestions",
			zap.String("topic", topic),
			zap.Error(err))
		return Fallback(), nil
	}
	return domain.TopicValidationResult{}, fmt.Errorf("validate topic %q: %w", topic, err)
}

// Fallback returns the not-relevant verdict with the fixed suggestions.
func Fallback() domain.TopicValidationResult {
	return domain.TopicValidationResult{
		IsRelevant:      false,
		SuggestedTopics: slices.Clone(FallbackSuggestions),
	}
}
