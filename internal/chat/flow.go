// Package chat runs the free-form topic request flow: log the request,
// check the topic, and either generate a lesson or suggest alternatives.
package chat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/trigtutor/internal/domain"
)

// View names the screen a reply sends the learner to.
type View string

const (
	ViewChat    View = "chat"
	ViewContent View = "content"
)

const refusalText = "Lo siento, mi especialidad es la trigonometría y las matemáticas. El tema que mencionaste no parece estar relacionado.\n\nTe sugiero explorar uno de estos temas:"

// Reply is the model's turn in the chat.
type Reply struct {
	Text        string                   `json:"text"`
	Suggestions []string                 `json:"suggestions,omitempty"`
	Content     *domain.GeneratedContent `json:"content,omitempty"`
	View        View                     `json:"view"`
}

// TopicValidator decides whether a topic is in scope.
type TopicValidator interface {
	Validate(ctx context.Context, topic string) (domain.TopicValidationResult, error)
}

// ContentGenerator produces the lesson for a topic.
type ContentGenerator interface {
	Generate(ctx context.Context, topic string) (domain.GeneratedContent, error)
}

// RequestRecorder appends a topic to a user's request log.
type RequestRecorder interface {
	Append(ctx context.Context, userID, text string) error
}

// Flow wires the chat steps together.
type Flow struct {
	validator TopicValidator
	content   ContentGenerator
	requests  RequestRecorder
	log       *zap.Logger
}

// NewFlow creates a chat flow. A nil recorder skips request logging.
func NewFlow(validator TopicValidator, content ContentGenerator, requests RequestRecorder, log *zap.Logger) *Flow {
	if log == nil {
		log = zap.NewNop()
	}
	return &Flow{validator: validator, content: content, requests: requests, log: log}
}

// Submit handles one topic request. The request is logged for userID before
// validation; a logging failure does not stop the flow. Errors come from
// the generation layer and keep their kind for generate.UserMessage.
func (f *Flow) Submit(ctx context.Context, userID, topic string) (Reply, error) {
	if f.requests != nil && userID != "" {
		if err := f.requests.Append(ctx, userID, topic); err != nil {
			f.log.Warn("failed to save user request",
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}

	verdict, err := f.validator.Validate(ctx, topic)
	if err != nil {
		return Reply{}, err
	}

	if !verdict.IsRelevant {
		f.log.Info("topic rejected",
			zap.String("topic", topic),
			zap.Strings("suggestions", verdict.SuggestedTopics))
		return Reply{
			Text:        refusalText,
			Suggestions: verdict.SuggestedTopics,
			View:        ViewChat,
		}, nil
	}

	content, err := f.content.Generate(ctx, topic)
	if err != nil {
		return Reply{}, err
	}

	return Reply{
		Text:    fmt.Sprintf("¡Claro! He generado una explicación sobre **%s**. Puedes ver los detalles en la pestaña 'Contenido'.", topic),
		Content: &content,
		View:    ViewContent,
	}, nil
}
