package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/archsketch/archsketch/spec"
)

func TestBuiltinTemplatesAreValid(t *testing.T) {
	for _, tpl := range BuiltinTemplates() {
		if tpl.ID == "" {
			t.Fatal("template with empty id")
		}
		if len(tpl.Keywords) == 0 {
			t.Errorf("template %s has no keywords", tpl.ID)
		}
		if err := tpl.Spec.Validate(); err != nil {
			t.Errorf("template %s has an invalid spec: %v", tpl.ID, err)
		}
	}
}

// TestTemplatePrecedence pins the declaration order the resolver depends on.
// "vpn 하이브리드" names both templates; vpn is declared first and must win.
func TestTemplatePrecedence(t *testing.T) {
	p := New()

	result := p.Parse("vpn 하이브리드 구성", Context{})
	if result.TemplateUsed != "vpn" {
		t.Errorf("templateUsed = %q, want vpn (declared before hybrid)", result.TemplateUsed)
	}

	ids := make([]string, 0)
	for _, tpl := range BuiltinTemplates() {
		ids = append(ids, tpl.ID)
	}
	want := []string{"vpn", "hybrid", "3tier", "simple-waf", "msa"}
	if len(ids) != len(want) {
		t.Fatalf("template table = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("template table = %v, want %v", ids, want)
		}
	}
}

func TestSecurityTemplateContainsFirewall(t *testing.T) {
	// A prompt naming a firewall must yield a spec that actually has one.
	p := New()
	result := p.Parse("firewall", Context{})
	if !result.Spec.HasType(spec.NodeFirewall) {
		t.Errorf("template %q resolved for a firewall prompt but has no firewall node", result.TemplateUsed)
	}
}

func TestLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templates.yaml")

	data := `
- id: custom-edge
  keywords: ["edge", "엣지"]
  spec:
    name: Edge
    nodes:
      - id: user
        type: user
        label: User
        tier: external
      - id: cdn
        type: cdn
        label: CDN
        tier: external
    connections:
      - source: user
        target: cdn
- id: custom-db
  keywords: ["datastore"]
  spec:
    name: Datastore
    nodes:
      - id: db
        type: db-server
        label: DB
        tier: data
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	templates, err := LoadTemplates(path)
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("loaded %d templates, want 2", len(templates))
	}
	if templates[0].ID != "custom-edge" || templates[1].ID != "custom-db" {
		t.Errorf("file order not preserved: %s, %s", templates[0].ID, templates[1].ID)
	}
	if !templates[0].Spec.HasType(spec.NodeCDN) {
		t.Error("yaml spec did not decode node types")
	}

	p := New(WithTemplates(templates))
	result := p.Parse("엣지 캐싱 구성", Context{})
	if result.TemplateUsed != "custom-edge" {
		t.Errorf("templateUsed = %q, want custom-edge", result.TemplateUsed)
	}
}

func TestLoadTemplatesRejectsBadTables(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name string
		yaml string
	}{
		{"missing id", `[{keywords: ["x"], spec: {name: n, nodes: [{id: a, type: web-server, label: a}]}}]`},
		{"no keywords", `[{id: t, spec: {name: n, nodes: [{id: a, type: web-server, label: a}]}}]`},
		{"invalid spec", `[{id: t, keywords: ["x"], spec: {name: n, nodes: [{id: a, type: not-a-type, label: a}]}}]`},
		{"dangling edge", `[{id: t, keywords: ["x"], spec: {name: n, nodes: [{id: a, type: web-server, label: a}], connections: [{source: a, target: ghost}]}}]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".yaml")
			if err := os.WriteFile(path, []byte(tc.yaml), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadTemplates(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadTemplatesMissingFile(t *testing.T) {
	if _, err := LoadTemplates(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
