package theme

import (
	"strings"
	"testing"
)

func TestQuestion(t *testing.T) {
	out := Question(3, "¿sen(30°)?", []string{"0", "1/2", "1"}, 1)
	for _, want := range []string{"3. ¿sen(30°)?", "A) 0", "B) 1/2", "✓", "C) 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	hidden := Question(1, "q", []string{"a", "b"}, -1)
	if strings.Contains(hidden, "✓") {
		t.Error("answer should be hidden")
	}
}

func TestNodeStatus(t *testing.T) {
	if !strings.Contains(NodeStatus(true, true), "●") {
		t.Error("completed marker")
	}
	if !strings.Contains(NodeStatus(false, true), "○") {
		t.Error("available marker")
	}
	if !strings.Contains(NodeStatus(false, false), "·") {
		t.Error("locked marker")
	}
}
