package roadmap

import (
	"fmt"
	"slices"
	"sort"
)

// graph holds the roadmap DAG with precomputed indices.
type graph struct {
	sections   []Section
	nodes      []Node
	byID       map[string]*Node
	dependents map[string][]string
	topoOrder  []Node
}

// g is the package-level graph singleton, set by init() in data.go.
var g *graph

// buildGraph flattens the sections in declared order and computes a
// topological order (Kahn's algorithm).
func buildGraph(sections []Section) *graph {
	gr := &graph{
		sections:   sections,
		byID:       make(map[string]*Node),
		dependents: make(map[string][]string),
	}

	for _, s := range sections {
		gr.nodes = append(gr.nodes, s.Nodes...)
	}
	for i := range gr.nodes {
		gr.byID[gr.nodes[i].ID] = &gr.nodes[i]
	}
	for i := range gr.nodes {
		for _, reqID := range gr.nodes[i].Requires {
			gr.dependents[reqID] = append(gr.dependents[reqID], gr.nodes[i].ID)
		}
	}

	inDegree := make(map[string]int, len(gr.nodes))
	for i := range gr.nodes {
		inDegree[gr.nodes[i].ID] = len(gr.nodes[i].Requires)
	}

	var queue []string
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		gr.topoOrder = append(gr.topoOrder, *gr.byID[id])

		deps := slices.Clone(gr.dependents[id])
		sort.Strings(deps)
		for _, depID := range deps {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	return gr
}

// Sections returns the roadmap sections in display order.
func Sections() []Section {
	out := make([]Section, len(g.sections))
	for i, s := range g.sections {
		out[i] = Section{Title: s.Title, Nodes: slices.Clone(s.Nodes)}
	}
	return out
}

// AllNodes returns every node in declared order.
func AllNodes() []Node {
	return slices.Clone(g.nodes)
}

// GetNode returns a node by ID, or error if not found.
func GetNode(id string) (Node, error) {
	n, ok := g.byID[id]
	if !ok {
		return Node{}, fmt.Errorf("roadmap node not found: %q", id)
	}
	return *n, nil
}

// Unlocked reports whether every node the given one requires is completed.
// Nodes without requirements are always unlocked.
func Unlocked(n Node, progress Progress) bool {
	for _, reqID := range n.Requires {
		if !progress[reqID].Completed {
			return false
		}
	}
	return true
}

// FirstIncomplete returns the first node in declared order that the learner
// has not completed. ok is false once the whole roadmap is done.
func FirstIncomplete(progress Progress) (n Node, ok bool) {
	for _, node := range g.nodes {
		if !progress[node.ID].Completed {
			return node, true
		}
	}
	return Node{}, false
}

// Available returns unlocked nodes that are not yet completed.
func Available(progress Progress) []Node {
	var result []Node
	for _, n := range g.topoOrder {
		if !progress[n.ID].Completed && Unlocked(n, progress) {
			result = append(result, n)
		}
	}
	return result
}

// TopologicalOrder returns all nodes in a valid topological order.
func TopologicalOrder() []Node {
	return slices.Clone(g.topoOrder)
}

// Validate checks the roadmap for structural issues.
func Validate() error {
	return validateNodes(g.nodes)
}
