package spec

import (
	"fmt"
)

// Validate checks the structural invariants of a spec: non-nil, unique node
// ids, closed-enum node types and tiers, and every connection endpoint
// referencing an existing node. It is the guard applied to any spec arriving
// from outside the package's control (LLM output, persisted snapshots,
// render-layer round-trips) before it is accepted as current state.
func (s *Spec) Validate() error {
	if s == nil {
		return fmt.Errorf("spec is nil")
	}

	seen := make(map[string]bool, len(s.Nodes))
	for i := range s.Nodes {
		n := &s.Nodes[i]
		if n.ID == "" {
			return fmt.Errorf("node at index %d has empty id", i)
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		seen[n.ID] = true

		if !n.Type.IsValid() {
			return fmt.Errorf("node %q has unknown type %q", n.ID, n.Type)
		}
		if !n.Tier.IsValid() {
			return fmt.Errorf("node %q has unknown tier %q", n.ID, n.Tier)
		}
	}

	for i, c := range s.Connections {
		if c.Source == "" || c.Target == "" {
			return fmt.Errorf("connection at index %d must have source and target", i)
		}
		if !seen[c.Source] {
			return fmt.Errorf("connection source %q references no node", c.Source)
		}
		if !seen[c.Target] {
			return fmt.Errorf("connection target %q references no node", c.Target)
		}
	}

	return nil
}

// Equal reports whether two specs describe the same graph: same name, same
// node set (by full value) and same connection multiset. Node and connection
// order is not significant.
func Equal(a, b *Spec) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name || len(a.Nodes) != len(b.Nodes) || len(a.Connections) != len(b.Connections) {
		return false
	}

	nodes := make(map[Node]int, len(a.Nodes))
	for _, n := range a.Nodes {
		nodes[n]++
	}
	for _, n := range b.Nodes {
		nodes[n]--
		if nodes[n] < 0 {
			return false
		}
	}

	conns := make(map[Connection]int, len(a.Connections))
	for _, c := range a.Connections {
		conns[c]++
	}
	for _, c := range b.Connections {
		conns[c]--
		if conns[c] < 0 {
			return false
		}
	}

	return true
}
