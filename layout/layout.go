// Package layout is the boundary adapter between the parsing core and the
// rendering collaborator. It converts specs to render nodes/edges and back,
// and re-attaches previous on-canvas positions when a spec is regenerated so
// a user's manual arrangement is never silently lost.
package layout

import (
	"fmt"

	"github.com/archsketch/archsketch/spec"
)

// Position is an on-canvas coordinate for one node.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RenderNode is the rendering collaborator's view of one node.
type RenderNode struct {
	ID       string        `json:"id"`
	Type     spec.NodeType `json:"type"`
	Label    string        `json:"label"`
	Tier     spec.Tier     `json:"tier,omitempty"`
	Position Position      `json:"position"`
}

// RenderEdge is the rendering collaborator's view of one connection.
type RenderEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Default placement grid for nodes with no prior position and no positioned
// neighbors.
const (
	gridOriginX  = 120.0
	gridOriginY  = 80.0
	gridStepY    = 110.0
	neighborStep = 160.0
)

// MergePositions produces a position for every node in next. A node keeps
// its previous position when its id existed before; a new node is placed at
// the midpoint of its positioned neighbors, beside a single positioned
// neighbor, or on a default grid as a last resort.
func MergePositions(next *spec.Spec, prev map[string]Position) map[string]Position {
	out := make(map[string]Position, len(next.Nodes))
	fresh := 0

	for _, n := range next.Nodes {
		if p, ok := prev[n.ID]; ok {
			out[n.ID] = p
			continue
		}

		neighbors := positionedNeighbors(next, n.ID, prev)
		switch {
		case len(neighbors) >= 2:
			out[n.ID] = Position{
				X: (neighbors[0].X + neighbors[1].X) / 2,
				Y: (neighbors[0].Y + neighbors[1].Y) / 2,
			}
		case len(neighbors) == 1:
			out[n.ID] = Position{X: neighbors[0].X + neighborStep, Y: neighbors[0].Y}
		default:
			out[n.ID] = Position{X: gridOriginX, Y: gridOriginY + gridStepY*float64(fresh)}
			fresh++
		}
	}

	return out
}

// positionedNeighbors returns previous positions of nodes connected to id,
// in connection-declaration order.
func positionedNeighbors(s *spec.Spec, id string, prev map[string]Position) []Position {
	var out []Position
	for _, c := range s.Connections {
		var other string
		switch id {
		case c.Source:
			other = c.Target
		case c.Target:
			other = c.Source
		default:
			continue
		}
		if p, ok := prev[other]; ok {
			out = append(out, p)
		}
	}
	return out
}

// ToRender converts a spec into render nodes and edges using the given
// positions (typically the output of MergePositions).
func ToRender(s *spec.Spec, positions map[string]Position) ([]RenderNode, []RenderEdge) {
	nodes := make([]RenderNode, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		nodes = append(nodes, RenderNode{
			ID:       n.ID,
			Type:     n.Type,
			Label:    n.Label,
			Tier:     n.Tier,
			Position: positions[n.ID],
		})
	}

	edges := make([]RenderEdge, 0, len(s.Connections))
	for i, c := range s.Connections {
		edges = append(edges, RenderEdge{
			ID:     fmt.Sprintf("e%d-%s-%s", i, c.Source, c.Target),
			Source: c.Source,
			Target: c.Target,
		})
	}

	return nodes, edges
}

// SpecFromRender rebuilds a spec from the rendering collaborator's node and
// edge lists. Node types and the connection set survive the round-trip;
// positions are layout state and deliberately do not.
func SpecFromRender(name, description string, nodes []RenderNode, edges []RenderEdge) (*spec.Spec, error) {
	s := &spec.Spec{
		Name:        name,
		Description: description,
		Nodes:       make([]spec.Node, 0, len(nodes)),
		Connections: make([]spec.Connection, 0, len(edges)),
	}

	for _, n := range nodes {
		s.Nodes = append(s.Nodes, spec.Node{
			ID:    n.ID,
			Type:  n.Type,
			Label: n.Label,
			Tier:  n.Tier,
		})
	}
	for _, e := range edges {
		s.Connections = append(s.Connections, spec.Connection{Source: e.Source, Target: e.Target})
	}

	// Render data comes from outside the core's control.
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("render graph is not a valid spec: %w", err)
	}

	return s, nil
}

// PositionsOf extracts the position map from a render node list, keyed by
// node id. This is the "previous positions" input to MergePositions.
func PositionsOf(nodes []RenderNode) map[string]Position {
	out := make(map[string]Position, len(nodes))
	for _, n := range nodes {
		out[n.ID] = n.Position
	}
	return out
}
