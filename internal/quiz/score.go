package quiz

import (
	"fmt"

	"github.com/abhisek/trigtutor/internal/domain"
)

// Unanswered marks a question the learner skipped.
const Unanswered = -1

// Result is the outcome of one submitted batch.
type Result struct {
	Correct   int
	Incorrect int

	// Verdicts holds one entry per question, true when answered correctly.
	Verdicts []bool
}

// Total returns the number of scored questions.
func (r Result) Total() int {
	return r.Correct + r.Incorrect
}

// Score grades answers against a batch. answers[i] is the option chosen for
// batch[i]; a skipped question counts as incorrect.
func Score(batch []domain.QuizQuestion, answers []int) (Result, error) {
	if len(answers) != len(batch) {
		return Result{}, fmt.Errorf("got %d answers for %d questions", len(answers), len(batch))
	}

	res := Result{Verdicts: make([]bool, len(batch))}
	for i, q := range batch {
		a := answers[i]
		if a != Unanswered && (a < 0 || a >= len(q.Options)) {
			return Result{}, fmt.Errorf("answer %d: option %d out of range", i, a)
		}
		if q.IsCorrect(a) {
			res.Correct++
			res.Verdicts[i] = true
		} else {
			res.Incorrect++
		}
	}
	return res, nil
}
