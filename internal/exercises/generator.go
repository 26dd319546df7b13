// Package exercises generates standalone practice exercises and answers
// learner follow-up questions about them.
package exercises

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/abhisek/trigtutor/internal/domain"
	"github.com/abhisek/trigtutor/internal/generate"
	"github.com/abhisek/trigtutor/internal/prompt"
)

// Generator produces exercises. Exercises are never cached: every call
// reaches the backend.
type Generator struct {
	client *generate.Client
	log    *zap.Logger
}

// NewGenerator creates an exercise generator.
func NewGenerator(client *generate.Client, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{client: client, log: log}
}

// Generate asks for one exercise on topic. history lists questions already
// shown for the topic; the prompt asks the model not to repeat them.
func (g *Generator) Generate(ctx context.Context, topic string, history []string) (domain.ExerciseContent, error) {
	ex, err := generate.Structured(ctx, g.client, prompt.Exercise(topic, history), domain.ExerciseContent.Validate)
	if err != nil {
		return domain.ExerciseContent{}, fmt.Errorf("exercise %q: %w", topic, err)
	}
	return ex, nil
}

// Next generates an exercise using and extending the session history for
// topic. The history only grows when generation succeeds.
func (g *Generator) Next(ctx context.Context, history *History, topic string) (domain.ExerciseContent, error) {
	prior := history.Questions(topic)

	ex, err := g.Generate(ctx, topic, prior)
	if err != nil {
		return domain.ExerciseContent{}, err
	}

	// Repeats are only prompt-discouraged; an exact one is served anyway.
	if slices.Contains(prior, ex.Question) {
		g.log.Warn("exercise repeats an earlier question",
			zap.String("topic", topic),
			zap.String("question", ex.Question),
			zap.Int("history", len(prior)))
	}

	history.Add(topic, ex.Question)
	return ex, nil
}

type practiceOutput struct {
	Exercises []domain.ExerciseContent `json:"exercises"`
}

// PracticeSession asks for a set of distinct exercises on topic, capped at
// prompt.PracticeSessionSize.
func (g *Generator) PracticeSession(ctx context.Context, topic string) ([]domain.ExerciseContent, error) {
	out, err := generate.Structured(ctx, g.client, prompt.PracticeSession(topic), func(o practiceOutput) error {
		for i, ex := range o.Exercises {
			if err := ex.Validate(); err != nil {
				return fmt.Errorf("exercise %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("practice session %q: %w", topic, err)
	}

	exercises := out.Exercises
	if len(exercises) > prompt.PracticeSessionSize {
		exercises = exercises[:prompt.PracticeSessionSize]
	}
	return exercises, nil
}
