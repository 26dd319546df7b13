package roadmap

import "fmt"

// Complete records an attempt at the node with the given ID. The node is
// marked completed when score reaches its RequiredScore. The best score is
// kept and a completed node never reverts. It returns whether the node is
// completed after the attempt.
func Complete(progress Progress, id string, score int) (bool, error) {
	n, err := GetNode(id)
	if err != nil {
		return false, err
	}
	if !Unlocked(n, progress) {
		return false, fmt.Errorf("roadmap node %q is locked", id)
	}

	cur := progress[id]
	if cur.Score == nil || score > *cur.Score {
		s := score
		cur.Score = &s
	}
	if score >= n.RequiredScore {
		cur.Completed = true
	}
	progress[id] = cur
	return cur.Completed, nil
}

// CompletedCount returns how many nodes are completed.
func CompletedCount(progress Progress) int {
	count := 0
	for _, n := range g.nodes {
		if progress[n.ID].Completed {
			count++
		}
	}
	return count
}
