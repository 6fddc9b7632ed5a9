package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archsketch/archsketch/spec"
)

func webSpec() *spec.Spec {
	return &spec.Spec{
		Name:        "simple web",
		Description: "user facing web stack",
		Nodes: []spec.Node{
			{ID: "user", Type: spec.NodeUser, Label: "사용자", Tier: spec.TierExternal},
			{ID: "web-1", Type: spec.NodeWebServer, Label: "Web Server", Tier: spec.TierDMZ},
			{ID: "db", Type: spec.NodeDBServer, Label: "DB Server", Tier: spec.TierData},
			{ID: "probe", Type: spec.NodeMonitoring, Label: "Probe"},
		},
		Connections: []spec.Connection{
			{Source: "user", Target: "web-1"},
			{Source: "web-1", Target: "db"},
		},
	}
}

func TestHCL(t *testing.T) {
	out, err := HCL(webSpec())
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, `archsketch_architecture "simple_web"`)
	assert.Contains(t, text, `resource "archsketch_component" "web_1"`)
	assert.Contains(t, text, `component_type = "web-server"`)
	assert.Contains(t, text, `tier`)
	assert.Contains(t, text, `connects_to`)
	assert.Contains(t, text, `"db"`)

	// Nodes without outgoing connections get no connects_to attribute.
	dbBlock := text[strings.Index(text, `"db" {`):]
	dbBlock = dbBlock[:strings.Index(dbBlock, "}")]
	assert.NotContains(t, dbBlock, "connects_to")
}

func TestHCLRejectsInvalidSpec(t *testing.T) {
	s := webSpec()
	s.Connections = append(s.Connections, spec.Connection{Source: "db", Target: "ghost"})
	_, err := HCL(s)
	assert.Error(t, err)
}

func TestMermaid(t *testing.T) {
	out, err := Mermaid(webSpec())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "flowchart TD\n"))
	assert.Contains(t, out, "subgraph external")
	assert.Contains(t, out, "subgraph dmz")
	assert.Contains(t, out, "subgraph data")
	assert.Contains(t, out, `web_1["Web Server"]`)
	assert.Contains(t, out, "user --> web_1")
	assert.Contains(t, out, "web_1 --> db")

	// The unzoned node renders outside all subgraphs.
	assert.Contains(t, out, `probe["Probe"]`)
	assert.NotContains(t, out, "subgraph internal", "no internal-tier members in this spec")
}

func TestMermaidRejectsInvalidSpec(t *testing.T) {
	s := webSpec()
	s.Nodes = append(s.Nodes, spec.Node{ID: "web-1", Type: spec.NodeWebServer, Label: "dup"})
	_, err := Mermaid(s)
	assert.Error(t, err)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "web_1", sanitizeName("web-1"))
	assert.Equal(t, "a_b", sanitizeName("a b"))
	assert.Equal(t, "unnamed", sanitizeName(""))
}
