// Package domain holds the value types exchanged between the generators and
// their callers.
package domain

import (
	"errors"
	"fmt"
)

// OptionCount is the number of answer options every question carries.
const OptionCount = 4

// LessonQuizSize is the number of quiz questions in a generated lesson.
const LessonQuizSize = 10

// TopicValidationResult reports whether a topic is in scope and, when it is
// not, suggests alternatives.
type TopicValidationResult struct {
	IsRelevant      bool     `json:"is_relevant"`
	SuggestedTopics []string `json:"suggested_topics"`
}

// Option is one answer choice.
type Option struct {
	Text string `json:"text"`
}

// QuizQuestion is a multiple-choice question with its explanation.
type QuizQuestion struct {
	Question           string   `json:"question"`
	Options            []Option `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Explanation        string   `json:"explanation"`
}

// Validate checks that the correct index points at an option.
func (q QuizQuestion) Validate() error {
	return checkQuestion(q.Question, len(q.Options), q.CorrectAnswerIndex)
}

// IsCorrect reports whether choice is the correct option.
func (q QuizQuestion) IsCorrect(choice int) bool {
	return choice == q.CorrectAnswerIndex
}

// GeneratedContent is a full lesson: a markdown body and its quiz pool.
type GeneratedContent struct {
	Body string         `json:"body"`
	Quiz []QuizQuestion `json:"quiz"`
}

// Validate checks the quiz size and every question.
func (c GeneratedContent) Validate() error {
	if len(c.Quiz) != LessonQuizSize {
		return fmt.Errorf("quiz has %d questions, want %d", len(c.Quiz), LessonQuizSize)
	}
	for i, q := range c.Quiz {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("quiz question %d: %w", i, err)
		}
	}
	return nil
}

// ExerciseContent is a standalone practice question. It shares the quiz
// question layout but is kept as a distinct type.
type ExerciseContent struct {
	Question           string   `json:"question"`
	Options            []Option `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Explanation        string   `json:"explanation"`
}

// Validate checks that the correct index points at an option.
func (e ExerciseContent) Validate() error {
	return checkQuestion(e.Question, len(e.Options), e.CorrectAnswerIndex)
}

// IsCorrect reports whether choice is the correct option.
func (e ExerciseContent) IsCorrect(choice int) bool {
	return choice == e.CorrectAnswerIndex
}

func checkQuestion(text string, options, correct int) error {
	if text == "" {
		return errors.New("empty question text")
	}
	if options != OptionCount {
		return fmt.Errorf("question has %d options, want %d", options, OptionCount)
	}
	if correct < 0 || correct >= options {
		return fmt.Errorf("correct answer index %d out of range [0, %d)", correct, options)
	}
	return nil
}
