package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/archsketch/archsketch/layout"
	"github.com/archsketch/archsketch/spec"
)

// ModifyRequest carries one natural-language modification of an existing
// spec to the LLM. Nodes and Edges are the rendering collaborator's current
// view; they give the model positions and ids exactly as the user sees them.
type ModifyRequest struct {
	Prompt  string              `json:"prompt"`
	Current *spec.Spec          `json:"current_spec"`
	Nodes   []layout.RenderNode `json:"nodes,omitempty"`
	Edges   []layout.RenderEdge `json:"edges,omitempty"`
}

// Modifier turns a modification prompt into a validated operation list by
// way of one chat completion. It proposes operations only; applying them to
// the accepted spec is the session's job.
type Modifier struct {
	client *Client
	logger *slog.Logger
}

// NewModifier creates a Modifier on top of a chat client.
func NewModifier(client *Client, logger *slog.Logger) *Modifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Modifier{client: client, logger: logger}
}

// modifyPayload is the JSON document the model is instructed to produce.
type modifyPayload struct {
	Reasoning  string           `json:"reasoning"`
	Operations []spec.Operation `json:"operations"`
}

// ProposeChanges sends the modification request and parses the model's
// operation list. Transport failures follow the client's retry policy;
// a response that is not valid JSON, or whose operations fail shape
// validation, is a fatal error (retrying would replay the same token
// stream, not fix it).
func (m *Modifier) ProposeChanges(ctx context.Context, req ModifyRequest) (*spec.ModifyResult, error) {
	if req.Current == nil {
		return nil, NewFatalError(fmt.Errorf("current spec is required"))
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, NewFatalError(fmt.Errorf("prompt is required"))
	}

	userMsg, err := buildUserMessage(req)
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("build request: %w", err))
	}

	resp, err := m.client.Complete(ctx, Request{
		Messages: []Message{
			{Role: "system", Content: modifySystemPrompt},
			{Role: "user", Content: userMsg},
		},
	})
	if err != nil {
		return nil, err
	}

	raw := ExtractJSON(resp.Content)
	if raw == "" {
		return nil, NewFatalError(fmt.Errorf("no JSON object in model response"))
	}

	var payload modifyPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, NewFatalError(fmt.Errorf("malformed model response: %w", err))
	}

	if err := spec.ValidateOperations(payload.Operations); err != nil {
		// Surface the reasoning so the caller can explain the rejection.
		return &spec.ModifyResult{
			Success:   false,
			Reasoning: payload.Reasoning,
			Error:     fmt.Sprintf("model proposed invalid operations: %v", err),
		}, nil
	}

	m.logger.Debug("modification proposed",
		"request_id", resp.RequestID,
		"operations", len(payload.Operations),
		"tokens", resp.Usage.TotalTokens)

	return &spec.ModifyResult{
		Success:    true,
		Reasoning:  payload.Reasoning,
		Operations: payload.Operations,
	}, nil
}

// buildUserMessage serializes the current graph state and the user's request.
func buildUserMessage(req ModifyRequest) (string, error) {
	current, err := json.MarshalIndent(req.Current, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Current architecture spec:\n```json\n")
	b.Write(current)
	b.WriteString("\n```\n")

	if len(req.Nodes) > 0 {
		render, err := json.Marshal(struct {
			Nodes []layout.RenderNode `json:"nodes"`
			Edges []layout.RenderEdge `json:"edges"`
		}{req.Nodes, req.Edges})
		if err != nil {
			return "", err
		}
		b.WriteString("Current canvas state:\n```json\n")
		b.Write(render)
		b.WriteString("\n```\n")
	}

	b.WriteString("User request (may be Korean or English):\n")
	b.WriteString(req.Prompt)
	return b.String(), nil
}

// modifySystemPrompt instructs the model to answer with a diff, never a
// whole replacement spec. The closed type list mirrors spec.NodeType.
const modifySystemPrompt = `You are an infrastructure architecture assistant.
The user wants to modify an existing architecture graph. Respond with ONLY a
JSON object of this shape:

{
  "reasoning": "<one short paragraph explaining the change>",
  "operations": [
    {"type": "add-node", "node": {"id": "", "type": "<node type>", "label": "<display name>", "tier": "<external|dmz|internal|data>"}},
    {"type": "remove-node", "node_id": "<existing id>"},
    {"type": "modify-node", "node_id": "<existing id>", "label": "...", "tier": "...", "description": "..."},
    {"type": "add-edge", "source": "<node id>", "target": "<node id>"},
    {"type": "remove-edge", "source": "<node id>", "target": "<node id>"}
  ]
}

Rules:
- node types must be one of: user, firewall, waf, ids-ips, vpn-gateway,
  load-balancer, cdn, dns, web-server, app-server, cache-server, db-server,
  storage, monitoring
- reference only node ids that exist in the given spec, or nodes you add
  earlier in the same operations list
- leave "id" empty on add-node to have one generated
- propose the minimal set of operations; do not rebuild the whole graph
- if the request cannot be satisfied, return an empty operations list and
  explain why in "reasoning"`
