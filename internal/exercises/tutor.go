package exercises

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/trigtutor/internal/domain"
	"github.com/abhisek/trigtutor/internal/generate"
	"github.com/abhisek/trigtutor/internal/prompt"
)

// ErrEmptyQuestion is returned by Clarify for a blank learner question.
var ErrEmptyQuestion = errors.New("empty question")

// Tutor answers follow-up questions about one exercise.
type Tutor struct {
	client *generate.Client
	log    *zap.Logger
}

// NewTutor creates an exercise tutor.
func NewTutor(client *generate.Client, log *zap.Logger) *Tutor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tutor{client: client, log: log}
}

// Clarify answers question in the context of exercise. Answers are cached
// per exercise question and normalized learner question.
func (t *Tutor) Clarify(ctx context.Context, exercise domain.ExerciseContent, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}

	answer, err := t.client.Text(ctx, prompt.Clarification(exercise, question))
	if err != nil {
		return "", fmt.Errorf("clarify: %w", err)
	}

	t.log.Debug("clarification answered",
		zap.String("exercise", exercise.Question),
		zap.Int("answer_bytes", len(answer)))
	return answer, nil
}
