package spec

import (
	"fmt"
)

// OpType identifies one kind of diff operation.
type OpType string

const (
	OpAddNode    OpType = "add-node"
	OpRemoveNode OpType = "remove-node"
	OpModifyNode OpType = "modify-node"
	OpAddEdge    OpType = "add-edge"
	OpRemoveEdge OpType = "remove-edge"
)

// IsValid returns true for a known operation type.
func (t OpType) IsValid() bool {
	switch t {
	case OpAddNode, OpRemoveNode, OpModifyNode, OpAddEdge, OpRemoveEdge:
		return true
	default:
		return false
	}
}

// Operation is one atomic, typed edit instruction produced by the LLM
// modification collaborator. It is a tagged variant: Type selects which
// payload fields are meaningful.
type Operation struct {
	Type OpType `json:"type"`

	// Node is the node to insert (add-node). Its ID may be empty, in which
	// case the diff engine mints a fresh one.
	Node *Node `json:"node,omitempty"`

	// NodeID targets an existing node (remove-node, modify-node).
	NodeID string `json:"node_id,omitempty"`

	// Label, Tier and Description are replacement values for modify-node.
	// Empty fields leave the current value unchanged.
	Label       string `json:"label,omitempty"`
	Tier        Tier   `json:"tier,omitempty"`
	Description string `json:"description,omitempty"`

	// Source and Target identify an edge (add-edge, remove-edge).
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
}

// Validate checks the operation's shape: the right payload fields for its
// type and closed-enum membership. It does not check referential integrity
// against any particular spec; the diff engine does that.
//
// This is the guard applied to every operation list before it crosses the
// trust boundary from the LLM (or from persisted data) into the diff engine.
func (o Operation) Validate() error {
	if !o.Type.IsValid() {
		return fmt.Errorf("unknown operation type %q", o.Type)
	}

	switch o.Type {
	case OpAddNode:
		if o.Node == nil {
			return fmt.Errorf("add-node requires a node payload")
		}
		if !o.Node.Type.IsValid() {
			return fmt.Errorf("add-node: unknown node type %q", o.Node.Type)
		}
		if !o.Node.Tier.IsValid() {
			return fmt.Errorf("add-node: unknown tier %q", o.Node.Tier)
		}
	case OpRemoveNode:
		if o.NodeID == "" {
			return fmt.Errorf("remove-node requires node_id")
		}
	case OpModifyNode:
		if o.NodeID == "" {
			return fmt.Errorf("modify-node requires node_id")
		}
		if !o.Tier.IsValid() {
			return fmt.Errorf("modify-node: unknown tier %q", o.Tier)
		}
	case OpAddEdge, OpRemoveEdge:
		if o.Source == "" || o.Target == "" {
			return fmt.Errorf("%s requires source and target", o.Type)
		}
	}

	return nil
}

// ValidateOperations checks the shape of every operation in a list.
// The first violation is returned with its index.
func ValidateOperations(ops []Operation) error {
	for i, op := range ops {
		if err := op.Validate(); err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
	}
	return nil
}
