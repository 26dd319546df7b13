package exercises

import (
	"slices"
	"sync"
)

// History records the question texts already served, per topic, for one
// learner session. It is safe for concurrent use.
type History struct {
	mu     sync.Mutex
	topics map[string][]string
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{topics: make(map[string][]string)}
}

// Questions returns a copy of the questions served for topic, oldest first.
// Topics are matched exactly as given.
func (h *History) Questions(topic string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.topics[topic])
}

// Add appends question to the history of topic.
func (h *History) Add(topic, question string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.topics[topic] = append(h.topics[topic], question)
}

// Len returns the number of questions served for topic.
func (h *History) Len(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}
