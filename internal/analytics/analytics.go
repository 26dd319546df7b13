// Package analytics tracks per-user learning activity counters.
package analytics

import "fmt"

// View names a section of the application where time is tracked.
type View string

const (
	ViewChat      View = "chat"
	ViewContent   View = "content"
	ViewExercises View = "exercises"
	ViewResources View = "resources"
	ViewAnalytics View = "analytics"
	ViewProfile   View = "profile"
)

// AudioKind names where a read-aloud was started.
type AudioKind string

const (
	AudioContent   AudioKind = "content"
	AudioExercises AudioKind = "exercises"
)

// ViewTime holds seconds spent per view.
type ViewTime struct {
	Chat      int `json:"chat"`
	Content   int `json:"content"`
	Exercises int `json:"exercises"`
	Resources int `json:"resources"`
	Analytics int `json:"analytics"`
	Profile   int `json:"profile"`
}

// AudioPlays counts read-aloud starts.
type AudioPlays struct {
	Content   int `json:"content"`
	Exercises int `json:"exercises"`
}

// Tally counts correct and incorrect answers.
type Tally struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// Total returns the number of answers recorded.
func (t Tally) Total() int { return t.Correct + t.Incorrect }

// Accuracy returns the fraction of correct answers, or 0 with none recorded.
func (t Tally) Accuracy() float64 {
	if t.Total() == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Total())
}

// Data is the analytics document stored with each user.
type Data struct {
	TimeSpentInViews ViewTime   `json:"timeSpentInViews"`
	AudioPlays       AudioPlays `json:"audioPlays"`
	ExerciseStats    Tally      `json:"exerciseStats"`
	QuizStats        Tally      `json:"quizStats"`
}

// Default returns zeroed analytics for a new user.
func Default() Data {
	return Data{}
}

// AddTime adds seconds to the counter of the given view.
func (d *Data) AddTime(view View, seconds int) error {
	if seconds < 0 {
		return fmt.Errorf("negative duration %d for view %q", seconds, view)
	}
	switch view {
	case ViewChat:
		d.TimeSpentInViews.Chat += seconds
	case ViewContent:
		d.TimeSpentInViews.Content += seconds
	case ViewExercises:
		d.TimeSpentInViews.Exercises += seconds
	case ViewResources:
		d.TimeSpentInViews.Resources += seconds
	case ViewAnalytics:
		d.TimeSpentInViews.Analytics += seconds
	case ViewProfile:
		d.TimeSpentInViews.Profile += seconds
	default:
		return fmt.Errorf("unknown view %q", view)
	}
	return nil
}

// IncrementAudio counts one read-aloud start.
func (d *Data) IncrementAudio(kind AudioKind) error {
	switch kind {
	case AudioContent:
		d.AudioPlays.Content++
	case AudioExercises:
		d.AudioPlays.Exercises++
	default:
		return fmt.Errorf("unknown audio kind %q", kind)
	}
	return nil
}

// RecordExercise counts one answered exercise.
func (d *Data) RecordExercise(correct bool) {
	if correct {
		d.ExerciseStats.Correct++
	} else {
		d.ExerciseStats.Incorrect++
	}
}

// RecordQuiz adds the result of one quiz batch.
func (d *Data) RecordQuiz(correct, incorrect int) {
	d.QuizStats.Correct += correct
	d.QuizStats.Incorrect += incorrect
}

// TotalTime returns the seconds spent across all views.
func (d Data) TotalTime() int {
	v := d.TimeSpentInViews
	return v.Chat + v.Content + v.Exercises + v.Resources + v.Analytics + v.Profile
}
