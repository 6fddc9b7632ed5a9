package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archsketch/archsketch/spec"
)

func baseSpec() *spec.Spec {
	return &spec.Spec{
		Name: "web",
		Nodes: []spec.Node{
			{ID: "user", Type: spec.NodeUser, Label: "User", Tier: spec.TierExternal},
			{ID: "web", Type: spec.NodeWebServer, Label: "Web", Tier: spec.TierDMZ},
		},
		Connections: []spec.Connection{{Source: "user", Target: "web"}},
	}
}

func newTestModifier(t *testing.T, completion string) *Modifier {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completion))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(
		Endpoint{Provider: "text", Model: "test-model", URL: srv.URL},
		WithRetryConfig(fastRetry(1)),
	)
	return NewModifier(client, nil)
}

func TestProposeChangesParsesOperations(t *testing.T) {
	completion := "Adding a cache behind the web server.\n" +
		"```json\n" +
		`{
  "reasoning": "웹서버 뒤에 캐시를 추가합니다",
  "operations": [
    {"type": "add-node", "node": {"id": "", "type": "cache-server", "label": "Cache", "tier": "internal"}},
    {"type": "add-edge", "source": "web", "target": "cache"}
  ]
}` + "\n```"

	m := newTestModifier(t, completion)
	result, err := m.ProposeChanges(context.Background(), ModifyRequest{
		Prompt:  "캐시 추가해줘",
		Current: baseSpec(),
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "웹서버 뒤에 캐시를 추가합니다", result.Reasoning)
	require.Len(t, result.Operations, 2)
	assert.Equal(t, spec.OpAddNode, result.Operations[0].Type)
	assert.Equal(t, spec.NodeCacheServer, result.Operations[0].Node.Type)
	assert.Equal(t, spec.OpAddEdge, result.Operations[1].Type)
}

func TestProposeChangesRejectsInvalidOperations(t *testing.T) {
	// Shape-invalid: add-edge without a target.
	completion := `{"reasoning": "broken", "operations": [{"type": "add-edge", "source": "web"}]}`

	m := newTestModifier(t, completion)
	result, err := m.ProposeChanges(context.Background(), ModifyRequest{
		Prompt:  "do something",
		Current: baseSpec(),
	})
	require.NoError(t, err, "invalid proposals are a structured failure, not an error")
	assert.False(t, result.Success)
	assert.Equal(t, "broken", result.Reasoning)
	assert.Contains(t, result.Error, "invalid operations")
}

func TestProposeChangesNoJSONInResponse(t *testing.T) {
	m := newTestModifier(t, "I am not able to help with that.")
	_, err := m.ProposeChanges(context.Background(), ModifyRequest{
		Prompt:  "add a cdn",
		Current: baseSpec(),
	})
	require.Error(t, err)
	assert.True(t, IsFatal(err))
}

func TestProposeChangesMalformedJSON(t *testing.T) {
	m := newTestModifier(t, `{"reasoning": "x", "operations": [{"type": 42}]}`)
	_, err := m.ProposeChanges(context.Background(), ModifyRequest{
		Prompt:  "add a cdn",
		Current: baseSpec(),
	})
	require.Error(t, err)
	assert.True(t, IsFatal(err))
}

func TestProposeChangesValidatesInput(t *testing.T) {
	m := newTestModifier(t, "{}")

	_, err := m.ProposeChanges(context.Background(), ModifyRequest{Prompt: "x"})
	require.Error(t, err, "current spec is required")
	assert.True(t, IsFatal(err))

	_, err = m.ProposeChanges(context.Background(), ModifyRequest{Prompt: "   ", Current: baseSpec()})
	require.Error(t, err, "blank prompt is rejected")
	assert.True(t, IsFatal(err))
}

func TestProposeChangesEmptyOperationsIsSuccess(t *testing.T) {
	// A refusal with an empty operations list is a valid answer.
	m := newTestModifier(t, `{"reasoning": "nothing to change", "operations": []}`)
	result, err := m.ProposeChanges(context.Background(), ModifyRequest{
		Prompt:  "keep it as is",
		Current: baseSpec(),
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Operations)
}

func TestBuildUserMessageIncludesGraphAndPrompt(t *testing.T) {
	msg, err := buildUserMessage(ModifyRequest{
		Prompt:  "remove the web server",
		Current: baseSpec(),
	})
	require.NoError(t, err)
	assert.True(t, strings.Contains(msg, `"web-server"`), "spec JSON must be embedded")
	assert.True(t, strings.Contains(msg, "remove the web server"), "prompt must be embedded")
	assert.False(t, strings.Contains(msg, "canvas state"), "no canvas section without render nodes")
}
