// Package lessons generates topic lessons: a markdown page with its quiz,
// and extra quiz batches for retakes.
package lessons

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/trigtutor/internal/domain"
	"github.com/abhisek/trigtutor/internal/generate"
	"github.com/abhisek/trigtutor/internal/prompt"
)

// Service generates lessons and extra quiz questions.
type Service struct {
	client *generate.Client
	cfg    Config
	log    *zap.Logger
}

// NewService creates a lesson generation service.
func NewService(client *generate.Client, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{client: client, cfg: cfg, log: log}
}

// Generate returns the lesson for topic. Answers are cached per topic. The
// result always carries exactly ten well-formed questions; anything else is
// a shape error and nothing is filled in.
func (s *Service) Generate(ctx context.Context, topic string) (domain.GeneratedContent, error) {
	p := s.tune(prompt.Lesson(topic))

	content, err := generate.Structured(ctx, s.client, p, domain.GeneratedContent.Validate)
	if err != nil {
		return domain.GeneratedContent{}, fmt.Errorf("lesson %q: %w", topic, err)
	}

	s.log.Debug("lesson generated",
		zap.String("topic", topic),
		zap.Int("body_bytes", len(content.Body)),
		zap.Int("questions", len(content.Quiz)))
	return content, nil
}

type extraQuizOutput struct {
	Questions []domain.QuizQuestion `json:"questions"`
}

// ExtraQuestions requests a fresh batch of quiz questions for topic. Never
// cached. The model may return more than asked; the batch is capped.
func (s *Service) ExtraQuestions(ctx context.Context, topic string) ([]domain.QuizQuestion, error) {
	p := prompt.ExtraQuiz(topic)
	if s.cfg.MaxTokens > 0 {
		p.MaxTokens = s.cfg.MaxTokens
	}

	out, err := generate.Structured(ctx, s.client, p, func(o extraQuizOutput) error {
		for i, q := range o.Questions {
			if err := q.Validate(); err != nil {
				return fmt.Errorf("question %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("extra questions %q: %w", topic, err)
	}

	questions := out.Questions
	if len(questions) > prompt.ExtraQuizSize {
		s.log.Debug("capping extra questions",
			zap.String("topic", topic),
			zap.Int("received", len(questions)))
		questions = questions[:prompt.ExtraQuizSize]
	}
	return questions, nil
}

func (s *Service) tune(p prompt.Prompt) prompt.Prompt {
	if s.cfg.MaxTokens > 0 {
		p.MaxTokens = s.cfg.MaxTokens
	}
	if s.cfg.Temperature > 0 {
		p.Temperature = s.cfg.Temperature
	}
	return p
}
