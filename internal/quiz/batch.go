// Package quiz pages a lesson's quiz pool in batches of five and asks for a
// fresh batch once the pool is used up.
package quiz

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhisek/trigtutor/internal/domain"
)

// BatchSize is the number of questions shown at a time.
const BatchSize = 5

// State is the position of a BatchState in the advance state machine.
type State int

const (
	// HasLocalBatch means the pool holds another batch; advancing is pure
	// pagination.
	HasLocalBatch State = iota

	// NeedsGeneration means the pool is used up; advancing asks the backend
	// for new questions.
	NeedsGeneration
)

func (s State) String() string {
	switch s {
	case HasLocalBatch:
		return "has-local-batch"
	case NeedsGeneration:
		return "needs-generation"
	default:
		return "unknown"
	}
}

// BatchState is a quiz pool and the batch currently shown from it.
// CurrentBatch is always AllQuestions[BatchIndex*5 : BatchIndex*5+5],
// clipped to the pool.
type BatchState struct {
	AllQuestions []domain.QuizQuestion `json:"allQuestions"`
	BatchIndex   int                   `json:"batchIndex"`
	CurrentBatch []domain.QuizQuestion `json:"currentBatch"`
}

// Initialize starts a quiz at the first batch of the lesson's pool.
func Initialize(content domain.GeneratedContent) BatchState {
	return newState(content.Quiz, 0)
}

func newState(pool []domain.QuizQuestion, index int) BatchState {
	return BatchState{
		AllQuestions: pool,
		BatchIndex:   index,
		CurrentBatch: batch(pool, index),
	}
}

// batchCount is the number of batches in a pool of n questions.
func batchCount(n int) int {
	return (n + BatchSize - 1) / BatchSize
}

// batch returns the batch at index, or nil when index is outside the pool.
// The bound is checked before multiplying so huge indexes cannot overflow.
func batch(pool []domain.QuizQuestion, index int) []domain.QuizQuestion {
	if index < 0 || index >= batchCount(len(pool)) {
		return nil
	}
	start := index * BatchSize
	end := min(start+BatchSize, len(pool))
	return pool[start:end:end]
}

// State reports what the next Advance will do.
func (b BatchState) State() State {
	if b.BatchIndex >= 0 && b.BatchIndex < batchCount(len(b.AllQuestions))-1 {
		return HasLocalBatch
	}
	return NeedsGeneration
}

// QuestionSource supplies fresh questions once a pool is used up.
type QuestionSource interface {
	ExtraQuestions(ctx context.Context, topic string) ([]domain.QuizQuestion, error)
}

// Manager advances quiz state.
type Manager struct {
	source QuestionSource
	log    *zap.Logger
}

// NewManager creates a quiz manager backed by source.
func NewManager(source QuestionSource, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{source: source, log: log}
}

// Advance moves to the next batch. The next local batch is served without
// a backend call; once the pool is used up, a new pool is requested and the
// index resets to zero. On failure the state comes back unchanged together
// with the error.
func (m *Manager) Advance(ctx context.Context, state BatchState, topic string) (BatchState, error) {
	if state.State() == HasLocalBatch {
		return newState(state.AllQuestions, state.BatchIndex+1), nil
	}

	questions, err := m.source.ExtraQuestions(ctx, topic)
	if err != nil {
		return state, err
	}
	if len(questions) > BatchSize {
		questions = questions[:BatchSize]
	}

	m.log.Debug("quiz pool replaced",
		zap.String("topic", topic),
		zap.Int("questions", len(questions)))
	return newState(questions, 0), nil
}
