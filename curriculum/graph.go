// Package curriculum models a prerequisite-gated learning graph: an ordered
// collection of topic nodes with prerequisite edges, supporting lookup and
// frontier computation. Nodes are created once by curriculum parsing and
// never mutated; only session-level completion tracking changes.
package curriculum

import (
	"encoding/json"
	"fmt"
)

// Node is a single topic in the learning graph.
type Node struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Difficulty         int      `json:"difficulty"`
	Prerequisites      []string `json:"prerequisites"`
	LearningObjectives []string `json:"learning_objectives"`
	Content            string   `json:"content"`
}

// Graph is an ordered collection of nodes plus a subject label. Prerequisite
// ids should reference ids in the same graph and form a DAG, but neither is
// enforced: a cycle or dangling reference makes the affected nodes
// permanently unreachable rather than erroring.
type Graph struct {
	Subject string `json:"subject"`
	Nodes   []Node `json:"nodes"`
}

// GetNode returns the first node with the given id, or nil.
func (g *Graph) GetNode(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Available returns, in original node order, every node that is not yet
// completed and whose prerequisites are all completed. It recomputes the
// frontier from scratch each call; completed ids that do not appear in the
// graph are ignored.
func (g *Graph) Available(completed []string) []Node {
	done := make(map[string]bool, len(completed))
	for _, id := range completed {
		done[id] = true
	}

	var available []Node
	for _, node := range g.Nodes {
		if done[node.ID] {
			continue
		}
		satisfied := true
		for _, p := range node.Prerequisites {
			if !done[p] {
				satisfied = false
				break
			}
		}
		if satisfied {
			available = append(available, node)
		}
	}
	return available
}

// NextAvailable returns the first frontier node, or nil when every node is
// completed or blocked.
func (g *Graph) NextAvailable(completed []string) *Node {
	available := g.Available(completed)
	if len(available) == 0 {
		return nil
	}
	return &available[0]
}

// Validate reports dangling prerequisite references and nodes no completion
// order can ever unlock. The warnings are advisory: frontier computation
// stays fail-soft regardless.
func (g *Graph) Validate() []string {
	var warnings []string

	ids := make(map[string]bool, len(g.Nodes))
	for _, node := range g.Nodes {
		ids[node.ID] = true
	}
	for _, node := range g.Nodes {
		for _, p := range node.Prerequisites {
			if !ids[p] {
				warnings = append(warnings, fmt.Sprintf("node %q references unknown prerequisite %q", node.ID, p))
			}
		}
	}

	// Expand the frontier to a fixpoint; whatever never unlocks is
	// unreachable (cycle or dangling reference).
	reached := make(map[string]bool, len(g.Nodes))
	for {
		grew := false
		for _, node := range g.Available(keys(reached)) {
			reached[node.ID] = true
			grew = true
		}
		if !grew {
			break
		}
	}
	for _, node := range g.Nodes {
		if !reached[node.ID] {
			warnings = append(warnings, fmt.Sprintf("node %q is unreachable", node.ID))
		}
	}

	return warnings
}

func keys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

// Decode converts the untyped JSON object a parsing specialist returns into a
// Graph. Unknown fields are dropped; a malformed object yields an error
// rather than a partial graph.
func Decode(raw map[string]interface{}) (Graph, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return Graph{}, fmt.Errorf("encode curriculum object: %w", err)
	}
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, fmt.Errorf("decode curriculum object: %w", err)
	}
	return g, nil
}
