// Package spec defines the architecture graph model shared by the parsing
// pipeline, the diff engine, and the external collaborators (rendering,
// persistence, feedback).
package spec

// NodeType identifies the kind of infrastructure component a node represents.
// The set is closed: anything outside it is rejected at trust boundaries.
type NodeType string

const (
	NodeUser         NodeType = "user"
	NodeFirewall     NodeType = "firewall"
	NodeWAF          NodeType = "waf"
	NodeIDSIPS       NodeType = "ids-ips"
	NodeVPNGateway   NodeType = "vpn-gateway"
	NodeLoadBalancer NodeType = "load-balancer"
	NodeCDN          NodeType = "cdn"
	NodeDNS          NodeType = "dns"
	NodeWebServer    NodeType = "web-server"
	NodeAppServer    NodeType = "app-server"
	NodeCacheServer  NodeType = "cache-server"
	NodeDBServer     NodeType = "db-server"
	NodeStorage      NodeType = "storage"
	NodeMonitoring   NodeType = "monitoring"
)

// String returns the string representation of the node type.
func (t NodeType) String() string {
	return string(t)
}

// IsValid returns true if the node type is part of the closed enumeration.
func (t NodeType) IsValid() bool {
	switch t {
	case NodeUser, NodeFirewall, NodeWAF, NodeIDSIPS, NodeVPNGateway,
		NodeLoadBalancer, NodeCDN, NodeDNS, NodeWebServer, NodeAppServer,
		NodeCacheServer, NodeDBServer, NodeStorage, NodeMonitoring:
		return true
	default:
		return false
	}
}

// Tier is a coarse network-zone classification for a node.
type Tier string

const (
	TierExternal Tier = "external"
	TierDMZ      Tier = "dmz"
	TierInternal Tier = "internal"
	TierData     Tier = "data"
)

// IsValid returns true for a known tier. The empty tier is valid too;
// a node does not have to be zoned.
func (t Tier) IsValid() bool {
	switch t {
	case "", TierExternal, TierDMZ, TierInternal, TierData:
		return true
	default:
		return false
	}
}

// DefaultTier returns the zone a component type conventionally lives in.
func (t NodeType) DefaultTier() Tier {
	switch t {
	case NodeUser, NodeCDN, NodeDNS:
		return TierExternal
	case NodeFirewall, NodeWAF, NodeIDSIPS, NodeVPNGateway, NodeLoadBalancer, NodeWebServer:
		return TierDMZ
	case NodeAppServer, NodeCacheServer, NodeMonitoring:
		return TierInternal
	case NodeDBServer, NodeStorage:
		return TierData
	default:
		return ""
	}
}

// Node is a single component in the architecture graph.
type Node struct {
	// ID is a stable, opaque identifier unique within a Spec.
	ID string `json:"id" yaml:"id"`

	// Type is the component kind from the closed enumeration.
	Type NodeType `json:"type" yaml:"type"`

	// Label is the display name, localized.
	Label string `json:"label" yaml:"label"`

	// Tier is the optional network-zone classification.
	Tier Tier `json:"tier,omitempty" yaml:"tier,omitempty"`

	// Description is optional free text about the node's role.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Connection is a directed data-flow edge between two node ids.
// Parallel edges are permitted.
type Connection struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// Spec is the structured infrastructure-architecture graph.
type Spec struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Nodes       []Node       `json:"nodes" yaml:"nodes"`
	Connections []Connection `json:"connections" yaml:"connections"`
}

// Clone returns a deep copy of the spec. Mutating the copy never affects
// the original; the diff engine and the session depend on this.
func (s *Spec) Clone() *Spec {
	if s == nil {
		return nil
	}
	out := &Spec{
		Name:        s.Name,
		Description: s.Description,
		Nodes:       make([]Node, len(s.Nodes)),
		Connections: make([]Connection, len(s.Connections)),
	}
	copy(out.Nodes, s.Nodes)
	copy(out.Connections, s.Connections)
	return out
}

// NodeByID returns a pointer to the node with the given id, or nil.
func (s *Spec) NodeByID(id string) *Node {
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return &s.Nodes[i]
		}
	}
	return nil
}

// HasNode reports whether a node with the given id exists.
func (s *Spec) HasNode(id string) bool {
	return s.NodeByID(id) != nil
}

// HasType reports whether any node of the given type exists.
func (s *Spec) HasType(t NodeType) bool {
	for i := range s.Nodes {
		if s.Nodes[i].Type == t {
			return true
		}
	}
	return false
}

// NodesOfType returns the ids of all nodes with the given type,
// in declaration order.
func (s *Spec) NodesOfType(t NodeType) []string {
	var ids []string
	for i := range s.Nodes {
		if s.Nodes[i].Type == t {
			ids = append(ids, s.Nodes[i].ID)
		}
	}
	return ids
}

// CommandType classifies how a parse result was produced.
type CommandType string

const (
	// CommandTemplate means a named template matched the prompt.
	CommandTemplate CommandType = "template"
	// CommandNewArchitecture means a fresh graph was synthesized.
	CommandNewArchitecture CommandType = "new-architecture"
	// CommandIncrementalEdit means the prompt edited an existing graph.
	CommandIncrementalEdit CommandType = "incremental-edit"
)

// Confidence bands. Resolution confidence is a discrete reliability signal,
// not a continuous score: exactly one of these values appears in a result.
const (
	ConfidenceTemplate  = 0.8
	ConfidenceComponent = 0.5
	ConfidenceFallback  = 0.3
	ConfidenceInvalid   = 0.0
)

// ParseResult is the outcome of one prompt submission. It is created fresh
// per submission and immutable once returned.
type ParseResult struct {
	Success      bool        `json:"success"`
	Spec         *Spec       `json:"spec,omitempty"`
	Confidence   float64     `json:"confidence"`
	TemplateUsed string      `json:"template_used,omitempty"`
	CommandType  CommandType `json:"command_type,omitempty"`
	Error        string      `json:"error,omitempty"`
	Warnings     []string    `json:"warnings,omitempty"`
	Suggestions  []string    `json:"suggestions,omitempty"`
}

// ModifyResult is the outcome of one LLM-backed modification round-trip.
type ModifyResult struct {
	Success    bool        `json:"success"`
	Spec       *Spec       `json:"spec,omitempty"`
	Reasoning  string      `json:"reasoning,omitempty"`
	Operations []Operation `json:"operations,omitempty"`
	Error      string      `json:"error,omitempty"`
}
