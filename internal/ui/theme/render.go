package theme

import (
	"fmt"
	"strings"
)

// Question renders a numbered multiple-choice question with lettered
// options. correct < 0 hides the answer.
func Question(n int, text string, options []string, correct int) string {
	var b strings.Builder
	b.WriteString(Subtitle.Render(fmt.Sprintf("%d. %s", n, text)))
	for i, opt := range options {
		line := fmt.Sprintf("   %c) %s", 'A'+i, opt)
		if i == correct {
			line = Correct.Render(line + "  ✓")
		} else {
			line = Body.Render(line)
		}
		b.WriteString("\n" + line)
	}
	return b.String()
}

// Verdict renders the outcome of one answer.
func Verdict(correct bool) string {
	if correct {
		return Correct.Render("✓ Correcto")
	}
	return Incorrect.Render("✗ Incorrecto")
}

// NodeStatus renders a roadmap node marker.
func NodeStatus(completed, unlocked bool) string {
	switch {
	case completed:
		return Correct.Render("●")
	case unlocked:
		return Available.Render("○")
	default:
		return Locked.Render("·")
	}
}
