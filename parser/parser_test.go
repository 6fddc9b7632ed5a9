package parser

import (
	"strings"
	"testing"

	"github.com/archsketch/archsketch/spec"
)

// TestParseIsTotal checks that every text prompt produces a successful
// result in one of the three confidence bands.
func TestParseIsTotal(t *testing.T) {
	p := New()

	prompts := []string{
		"",
		"   \t\n  ",
		"3티어 웹 아키텍처",
		"firewall과 web server",
		"완전히 알 수 없는 문장입니다",
		"gibberish that matches nothing at all... almost",
		"한국어와 english가 섞인 load balancer 구성",
		"☃☃☃",
	}

	for _, prompt := range prompts {
		result := p.Parse(prompt, Context{})
		if !result.Success {
			t.Errorf("Parse(%q) success = false, want true (error: %s)", prompt, result.Error)
			continue
		}
		switch result.Confidence {
		case spec.ConfidenceTemplate, spec.ConfidenceComponent, spec.ConfidenceFallback:
		default:
			t.Errorf("Parse(%q) confidence = %v, want one of 0.8/0.5/0.3", prompt, result.Confidence)
		}
		if result.Spec == nil {
			t.Errorf("Parse(%q) returned no spec", prompt)
		} else if err := result.Spec.Validate(); err != nil {
			t.Errorf("Parse(%q) produced an invalid spec: %v", prompt, err)
		}
	}
}

func TestParseRejectsNonTextInput(t *testing.T) {
	p := New()

	result := p.Parse(string([]byte{0xff, 0xfe, 0xfd}), Context{})
	if result.Success {
		t.Fatal("invalid UTF-8 must be rejected")
	}
	if result.Confidence != spec.ConfidenceInvalid {
		t.Errorf("confidence = %v, want 0", result.Confidence)
	}
	if result.Error == "" {
		t.Error("rejection must carry an error message")
	}
}

// TestTemplateBeatsComponentDetection pins the strategy priority: a prompt
// matching both a template keyword and component synonyms resolves to the
// template.
func TestTemplateBeatsComponentDetection(t *testing.T) {
	p := New()

	result := p.Parse("firewall과 web server", Context{})
	if result.TemplateUsed != "simple-waf" {
		t.Errorf("templateUsed = %q, want simple-waf", result.TemplateUsed)
	}
	if result.Confidence != spec.ConfidenceTemplate {
		t.Errorf("confidence = %v, want 0.8", result.Confidence)
	}
	if result.CommandType != spec.CommandTemplate {
		t.Errorf("commandType = %q, want template", result.CommandType)
	}
}

func TestEmptyPromptFallsBack(t *testing.T) {
	p := New()

	result := p.Parse("", Context{})
	if !result.Success {
		t.Fatal("empty prompt must still succeed via fallback")
	}
	if result.Confidence > spec.ConfidenceComponent {
		t.Errorf("confidence = %v, want <= 0.5", result.Confidence)
	}
	if len(result.Suggestions) == 0 {
		t.Error("fallback should suggest templates")
	}
}

func TestComponentDetectionMinimum(t *testing.T) {
	p := New()

	result := p.Parse("firewall", Context{})
	if !result.Success {
		t.Fatal("parse failed")
	}
	if !result.Spec.HasType(spec.NodeFirewall) {
		t.Error("result must contain a firewall node")
	}
	if len(result.Spec.Nodes) < 2 {
		t.Errorf("node count = %d, want >= 2 (implicit user node)", len(result.Spec.Nodes))
	}
}

func TestKorean3Tier(t *testing.T) {
	p := New()

	result := p.Parse("3티어 웹 아키텍처", Context{})
	if result.TemplateUsed != "3tier" {
		t.Fatalf("templateUsed = %q, want 3tier", result.TemplateUsed)
	}
	for _, want := range []spec.NodeType{spec.NodeWebServer, spec.NodeAppServer, spec.NodeDBServer} {
		if !result.Spec.HasType(want) {
			t.Errorf("3tier spec missing node type %s", want)
		}
	}
}

// TestKeywordAmbiguityIsStable pins the documented substring trade-off:
// "ips" inside "ipsum" matches the IDS/IPS component. This is deliberate,
// compatibility-relevant behavior.
func TestKeywordAmbiguityIsStable(t *testing.T) {
	p := New()

	result := p.Parse("xyzzy lorem ipsum dolor sit amet", Context{})
	if result.Confidence != spec.ConfidenceComponent {
		t.Fatalf("confidence = %v, want 0.5 (component detection)", result.Confidence)
	}
	if !result.Spec.HasType(spec.NodeIDSIPS) {
		t.Error("expected an ids-ips node from the 'ips' substring in 'ipsum'")
	}
	if len(result.Warnings) == 0 {
		t.Error("short-synonym match should produce a warning")
	}
}

func TestComponentDetectionChainsFromUser(t *testing.T) {
	p := New()

	result := p.Parse("nginx 뒤에 redis 그리고 postgres", Context{})
	if result.Confidence != spec.ConfidenceComponent {
		t.Fatalf("confidence = %v, want 0.5", result.Confidence)
	}

	s := result.Spec
	if !s.HasNode("user") {
		t.Fatal("user node must be injected")
	}

	// Every node except user has exactly one incoming edge: a chain.
	incoming := make(map[string]int)
	for _, c := range s.Connections {
		incoming[c.Target]++
	}
	for _, n := range s.Nodes {
		if n.ID == "user" {
			continue
		}
		if incoming[n.ID] != 1 {
			t.Errorf("node %s has %d incoming edges, want 1", n.ID, incoming[n.ID])
		}
	}
}

func TestIncrementalAdd(t *testing.T) {
	p := New()

	first := p.Parse("3티어 웹 아키텍처", Context{})
	ctx := Context{}.WithEntry("3티어 웹 아키텍처", first)

	result := p.Parse("로드밸런서 추가해줘", ctx)
	if result.CommandType != spec.CommandIncrementalEdit {
		t.Fatalf("commandType = %q, want incremental-edit", result.CommandType)
	}
	if result.Confidence != spec.ConfidenceComponent {
		t.Errorf("confidence = %v, want 0.5", result.Confidence)
	}
	if !result.Spec.HasType(spec.NodeLoadBalancer) {
		t.Error("load balancer was not added")
	}
	if got, want := len(result.Spec.Nodes), len(first.Spec.Nodes)+1; got != want {
		t.Errorf("node count = %d, want %d (existing spec plus one)", got, want)
	}
	// Existing nodes survive: this is a fold, not a replacement.
	for _, n := range first.Spec.Nodes {
		if !result.Spec.HasNode(n.ID) {
			t.Errorf("node %s lost during incremental edit", n.ID)
		}
	}
}

func TestIncrementalAddEnglish(t *testing.T) {
	p := New()

	first := p.Parse("3티어 웹 아키텍처", Context{})
	ctx := Context{}.WithEntry("3티어 웹 아키텍처", first)

	result := p.Parse("add a waf", ctx)
	if result.CommandType != spec.CommandIncrementalEdit {
		t.Fatalf("commandType = %q, want incremental-edit", result.CommandType)
	}
	if !result.Spec.HasType(spec.NodeWAF) {
		t.Error("waf was not added")
	}
}

func TestIncrementalRemoveCascades(t *testing.T) {
	p := New()

	first := p.Parse("3티어 웹 아키텍처", Context{})
	ctx := Context{}.WithEntry("3티어 웹 아키텍처", first)

	result := p.Parse("방화벽 삭제해줘", ctx)
	if result.CommandType != spec.CommandIncrementalEdit {
		t.Fatalf("commandType = %q, want incremental-edit", result.CommandType)
	}
	if result.Spec.HasType(spec.NodeFirewall) {
		t.Error("firewall should be removed")
	}
	if err := result.Spec.Validate(); err != nil {
		t.Errorf("cascading removal left dangling edges: %v", err)
	}
}

func TestIncrementalRemoveMissingTypeWarns(t *testing.T) {
	p := New()

	first := p.Parse("3티어 웹 아키텍처", Context{})
	ctx := Context{}.WithEntry("3티어 웹 아키텍처", first)

	result := p.Parse("cdn 제거해줘", ctx)
	if !result.Success {
		t.Fatal("missing removal target is a warning, not a failure")
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning about the missing component")
	}
	if !spec.Equal(result.Spec, first.Spec) {
		t.Error("spec must be unchanged when nothing matched")
	}
}

func TestIncrementalEditNeverMutatesContextSpec(t *testing.T) {
	p := New()

	first := p.Parse("3티어 웹 아키텍처", Context{})
	ctx := Context{}.WithEntry("3티어 웹 아키텍처", first)
	before := len(ctx.CurrentSpec.Nodes)

	_ = p.Parse("캐시 추가", ctx)
	if len(ctx.CurrentSpec.Nodes) != before {
		t.Error("incremental edit mutated the caller's context spec in place")
	}
}

func TestFreshArchitectureIgnoresEditPhrasingWithoutContext(t *testing.T) {
	p := New()

	// Without a current spec, "추가" phrasing is just a new-architecture prompt.
	result := p.Parse("웹서버 추가", Context{})
	if result.CommandType == spec.CommandIncrementalEdit {
		t.Error("incremental edit requires an existing spec")
	}
	if !result.Spec.HasType(spec.NodeWebServer) {
		t.Error("web server should still be detected")
	}
}

func TestNormalizationIsCaseInsensitive(t *testing.T) {
	p := New()

	upper := p.Parse("FIREWALL과 WEB SERVER", Context{})
	if upper.TemplateUsed != "simple-waf" {
		t.Errorf("uppercase prompt: templateUsed = %q, want simple-waf", upper.TemplateUsed)
	}
}

func TestWithTemplatesOverride(t *testing.T) {
	custom := []Template{
		{
			ID:       "tiny",
			Keywords: []string{"tiny"},
			Spec: spec.Spec{
				Name:  "tiny",
				Nodes: []spec.Node{{ID: "web", Type: spec.NodeWebServer, Label: "web"}},
			},
		},
	}
	p := New(WithTemplates(custom))

	result := p.Parse("a tiny setup", Context{})
	if result.TemplateUsed != "tiny" {
		t.Errorf("templateUsed = %q, want tiny", result.TemplateUsed)
	}

	// The built-in table is gone, so its keywords no longer match.
	result = p.Parse("3티어", Context{})
	if result.TemplateUsed != "" {
		t.Errorf("built-in template %q should not be active", result.TemplateUsed)
	}
}

func TestTemplateResultIsACopy(t *testing.T) {
	p := New()

	a := p.Parse("3티어", Context{})
	a.Spec.Nodes[0].Label = "tampered"

	b := p.Parse("3티어", Context{})
	if b.Spec.Nodes[0].Label == "tampered" {
		t.Error("template spec must be cloned per result")
	}
}

func TestSuggestionsNameMissingComponents(t *testing.T) {
	p := New()

	result := p.Parse("nginx", Context{})
	found := false
	for _, s := range result.Suggestions {
		if strings.Contains(s, "DB") {
			found = true
		}
	}
	if !found {
		t.Errorf("suggestions = %v, want a DB hint for a spec without a database", result.Suggestions)
	}
}
