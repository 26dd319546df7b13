package roadmap

// NodeType distinguishes what a roadmap step asks the learner to do.
type NodeType string

const (
	NodeConcept    NodeType = "concept"
	NodePractice   NodeType = "practice"
	NodeGame       NodeType = "game"
	NodePlayground NodeType = "playground"
)

// Node is one step of the learning path.
type Node struct {
	ID    string   `json:"id"`
	Type  NodeType `json:"type"`
	Title string   `json:"title"`
	Topic string   `json:"topic"`

	// Requires lists node IDs that must be completed first.
	Requires []string `json:"requires,omitempty"`

	// RequiredScore is the minimum score that counts as completion.
	// Zero means any attempt completes the node.
	RequiredScore int `json:"requiredScore,omitempty"`
}

// Section groups nodes under a difficulty heading.
type Section struct {
	Title string `json:"title"`
	Nodes []Node `json:"nodes"`
}

// NodeProgress is the learner's state for one node.
type NodeProgress struct {
	Completed bool `json:"completed"`
	Score     *int `json:"score,omitempty"`
}

// Progress maps node IDs to the learner's state.
type Progress map[string]NodeProgress
