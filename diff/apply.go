// Package diff applies typed edit operations to an architecture spec.
//
// Operation lists come from the LLM modification collaborator and are
// untrusted: the whole list either applies cleanly or not at all. A
// malformed list never leaves a half-updated spec visible to the caller.
package diff

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/archsketch/archsketch/spec"
)

// ValidationError reports an operation that references a node id absent
// from the spec it is applied to.
type ValidationError struct {
	// Index is the position of the failing operation in the list.
	Index int
	// Reference is the node id that could not be resolved.
	Reference string
	// Op is the operation type that failed.
	Op spec.OpType
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("operation %d (%s): node %q does not exist", e.Index, e.Op, e.Reference)
}

// Apply applies operations to base in list order and returns the resulting
// spec. base is never mutated: on any error the returned spec is nil and the
// caller's spec is exactly as it was.
//
// Later operations observe the effects of earlier ones, so an add-node
// followed by an add-edge to the new node is valid within one call.
// Removing a node also removes every connection incident to it.
func Apply(base *spec.Spec, ops []spec.Operation) (*spec.Spec, error) {
	if base == nil {
		return nil, fmt.Errorf("base spec is nil")
	}
	if err := spec.ValidateOperations(ops); err != nil {
		return nil, err
	}

	next := base.Clone()
	for i, op := range ops {
		if err := applyOne(next, i, op); err != nil {
			return nil, err
		}
	}

	// A clean operation list cannot produce a dangling reference, but the
	// result is re-checked before it is allowed to replace accepted state.
	if err := next.Validate(); err != nil {
		return nil, fmt.Errorf("diff produced invalid spec: %w", err)
	}

	return next, nil
}

func applyOne(s *spec.Spec, index int, op spec.Operation) error {
	switch op.Type {
	case spec.OpAddNode:
		n := *op.Node
		if n.ID == "" {
			n.ID = MintNodeID(n.Type)
		}
		if s.HasNode(n.ID) {
			return fmt.Errorf("operation %d (add-node): node %q already exists", index, n.ID)
		}
		if n.Label == "" {
			n.Label = n.Type.String()
		}
		if n.Tier == "" {
			n.Tier = n.Type.DefaultTier()
		}
		s.Nodes = append(s.Nodes, n)

	case spec.OpRemoveNode:
		if !s.HasNode(op.NodeID) {
			return &ValidationError{Index: index, Reference: op.NodeID, Op: op.Type}
		}
		removeNode(s, op.NodeID)

	case spec.OpModifyNode:
		n := s.NodeByID(op.NodeID)
		if n == nil {
			return &ValidationError{Index: index, Reference: op.NodeID, Op: op.Type}
		}
		if op.Label != "" {
			n.Label = op.Label
		}
		if op.Tier != "" {
			n.Tier = op.Tier
		}
		if op.Description != "" {
			n.Description = op.Description
		}

	case spec.OpAddEdge:
		if !s.HasNode(op.Source) {
			return &ValidationError{Index: index, Reference: op.Source, Op: op.Type}
		}
		if !s.HasNode(op.Target) {
			return &ValidationError{Index: index, Reference: op.Target, Op: op.Type}
		}
		s.Connections = append(s.Connections, spec.Connection{Source: op.Source, Target: op.Target})

	case spec.OpRemoveEdge:
		if !s.HasNode(op.Source) {
			return &ValidationError{Index: index, Reference: op.Source, Op: op.Type}
		}
		if !s.HasNode(op.Target) {
			return &ValidationError{Index: index, Reference: op.Target, Op: op.Type}
		}
		removeEdges(s, op.Source, op.Target)
	}

	return nil
}

// removeNode deletes the node and, as part of the same step, every
// connection that references it.
func removeNode(s *spec.Spec, id string) {
	nodes := s.Nodes[:0]
	for _, n := range s.Nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}
	s.Nodes = nodes

	conns := s.Connections[:0]
	for _, c := range s.Connections {
		if c.Source != id && c.Target != id {
			conns = append(conns, c)
		}
	}
	s.Connections = conns
}

// removeEdges deletes every edge with the given source/target pair.
// Parallel edges are removed together.
func removeEdges(s *spec.Spec, source, target string) {
	conns := s.Connections[:0]
	for _, c := range s.Connections {
		if c.Source != source || c.Target != target {
			conns = append(conns, c)
		}
	}
	s.Connections = conns
}

// MintNodeID produces a fresh node id for a component type. The type prefix
// keeps ids readable in exports and logs; the uuid suffix keeps them unique.
func MintNodeID(t spec.NodeType) string {
	return fmt.Sprintf("%s-%s", t, uuid.NewString()[:8])
}
