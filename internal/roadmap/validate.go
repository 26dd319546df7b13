package roadmap

import (
	"fmt"
	"strings"
)

// validateNodes performs all structural checks on the given node set.
// Returns a combined error describing all problems found, or nil if valid.
func validateNodes(nodes []Node) error {
	var errs []string

	idSet := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if idSet[n.ID] {
			errs = append(errs, fmt.Sprintf("duplicate node ID: %q", n.ID))
		}
		idSet[n.ID] = true
	}

	for _, n := range nodes {
		for _, reqID := range n.Requires {
			if !idSet[reqID] {
				errs = append(errs, fmt.Sprintf("node %q requires nonexistent node %q", n.ID, reqID))
			}
		}
		if n.RequiredScore < 0 {
			errs = append(errs, fmt.Sprintf("node %q: RequiredScore must be >= 0, got %d", n.ID, n.RequiredScore))
		}
	}

	// Cycle check (Kahn's algorithm)
	inDegree := make(map[string]int, len(nodes))
	adjList := make(map[string][]string)
	for _, n := range nodes {
		inDegree[n.ID] = len(n.Requires)
		for _, reqID := range n.Requires {
			adjList[reqID] = append(adjList[reqID], n.ID)
		}
	}

	var queue []string
	for _, n := range nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, depID := range adjList[id] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	if visited < len(nodes) {
		var cycleNodes []string
		for _, n := range nodes {
			if inDegree[n.ID] > 0 {
				cycleNodes = append(cycleNodes, n.ID)
			}
		}
		errs = append(errs, fmt.Sprintf("cycle detected involving nodes: %s", strings.Join(cycleNodes, ", ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("roadmap validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
