// Package parser turns free-form Korean/English prompts into architecture
// specs without any remote calls. Resolution runs three strategies in fixed
// priority order (template table, component synonym detection, fixed
// fallback) and folds conversation context in for incremental edits.
package parser

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/archsketch/archsketch/spec"
)

// Parser is the resolution orchestrator. It is stateless between calls;
// all conversation state lives in the Context value passed to Parse.
type Parser struct {
	templates []Template
	logger    *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithTemplates replaces the built-in template table. Order decides match
// precedence.
func WithTemplates(templates []Template) Option {
	return func(p *Parser) {
		p.templates = templates
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// New creates a Parser with the built-in template table.
func New(opts ...Option) *Parser {
	p := &Parser{
		templates: BuiltinTemplates(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Templates returns the active template table in match-precedence order.
// The returned slice is shared; callers must not modify it.
func (p *Parser) Templates() []Template {
	return p.templates
}

// Parse resolves a prompt into a ParseResult. It never panics and never
// returns an error: every failure mode is a structured result. For any
// valid prompt the result is successful with confidence 0.8 (template),
// 0.5 (component detection or incremental edit) or 0.3 (fallback);
// confidence 0 appears only for input that is not interpretable text.
func (p *Parser) Parse(prompt string, ctx Context) spec.ParseResult {
	if !utf8.ValidString(prompt) {
		return spec.ParseResult{
			Success:    false,
			Confidence: spec.ConfidenceInvalid,
			Error:      "prompt is not valid UTF-8 text",
		}
	}

	normalized := strings.ToLower(strings.TrimSpace(prompt))

	// Incremental-edit phrasing only makes sense against an existing spec.
	if ctx.CurrentSpec != nil {
		if intent, ok := editIntent(normalized); ok {
			return p.applyIncremental(normalized, intent, ctx)
		}
	}

	if t, ok := p.resolveTemplate(normalized); ok {
		p.logger.Debug("prompt resolved by template", "template", t.ID)
		return spec.ParseResult{
			Success:      true,
			Spec:         t.Spec.Clone(),
			Confidence:   spec.ConfidenceTemplate,
			TemplateUsed: t.ID,
			CommandType:  spec.CommandTemplate,
		}
	}

	if s, found, ok := detectComponents(normalized); ok {
		p.logger.Debug("prompt resolved by component detection", "components", len(found))
		return spec.ParseResult{
			Success:     true,
			Spec:        s,
			Confidence:  spec.ConfidenceComponent,
			CommandType: spec.CommandNewArchitecture,
			Warnings:    ambiguityWarnings(found),
			Suggestions: componentSuggestions(s),
		}
	}

	p.logger.Debug("prompt unresolved, using fallback")
	return spec.ParseResult{
		Success:     true,
		Spec:        fallbackSpec(),
		Confidence:  spec.ConfidenceFallback,
		CommandType: spec.CommandNewArchitecture,
		Warnings:    []string{"프롬프트에서 아키텍처를 인식하지 못해 기본 구성을 생성했습니다"},
		Suggestions: p.templateSuggestions(),
	}
}

// editKind distinguishes incremental add from incremental remove.
type editKind int

const (
	editAdd editKind = iota
	editRemove
)

var removePhrases = []string{"삭제", "제거", "빼줘", "빼 줘", "지워", "remove", "delete"}
var addPhrases = []string{"추가", "더해", "넣어", "붙여", "add ", "insert "}

// editIntent recognizes incremental-edit phrasing. Removal phrasing wins
// when both appear; a prompt that says both is most often "replace X"
// and removing first is the conservative reading.
func editIntent(normalized string) (editKind, bool) {
	for _, w := range removePhrases {
		if strings.Contains(normalized, w) {
			return editRemove, true
		}
	}
	for _, w := range addPhrases {
		if strings.Contains(normalized, w) {
			return editAdd, true
		}
	}
	return 0, false
}

// applyIncremental folds detected components into the existing spec rather
// than replacing it wholesale. The current spec is cloned; the context value
// held by the caller is never mutated.
func (p *Parser) applyIncremental(normalized string, intent editKind, ctx Context) spec.ParseResult {
	found := scanComponents(normalized)
	next := ctx.CurrentSpec.Clone()
	var warnings []string

	if len(found) == 0 {
		return spec.ParseResult{
			Success:     true,
			Spec:        next,
			Confidence:  spec.ConfidenceComponent,
			CommandType: spec.CommandIncrementalEdit,
			Warnings:    []string{"편집 요청에서 알려진 구성요소를 찾지 못했습니다"},
			Suggestions: componentSuggestions(next),
		}
	}

	switch intent {
	case editAdd:
		for _, d := range found {
			id := componentID(next, d.Type)
			tail := chainTail(next)
			next.Nodes = append(next.Nodes, spec.Node{
				ID:    id,
				Type:  d.Type,
				Label: defaultLabel(d.Type),
				Tier:  d.Type.DefaultTier(),
			})
			if tail != "" {
				next.Connections = append(next.Connections, spec.Connection{Source: tail, Target: id})
			}
		}
	case editRemove:
		for _, d := range found {
			ids := next.NodesOfType(d.Type)
			if len(ids) == 0 {
				warnings = append(warnings, fmt.Sprintf("%s 구성요소가 없어 제거하지 못했습니다", defaultLabel(d.Type)))
				continue
			}
			for _, id := range ids {
				removeNodeCascade(next, id)
			}
		}
	}

	warnings = append(warnings, ambiguityWarnings(found)...)

	p.logger.Debug("incremental edit applied",
		"intent", intent,
		"components", len(found),
		"nodes", len(next.Nodes))

	return spec.ParseResult{
		Success:     true,
		Spec:        next,
		Confidence:  spec.ConfidenceComponent,
		CommandType: spec.CommandIncrementalEdit,
		Warnings:    warnings,
		Suggestions: componentSuggestions(next),
	}
}

// chainTail picks the node new components are chained from: the last node
// in declaration order, which for generated specs is the innermost one.
func chainTail(s *spec.Spec) string {
	if len(s.Nodes) == 0 {
		return ""
	}
	return s.Nodes[len(s.Nodes)-1].ID
}

// removeNodeCascade removes a node and every connection incident to it.
func removeNodeCascade(s *spec.Spec, id string) {
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

// shortSynonyms lists scan words that commonly occur inside unrelated text.
var shortSynonyms = map[string]bool{
	"fw": true, "lb": true, "l4": true, "l7": true,
	"ids": true, "ips": true, "was": true, "db": true, "nas": true,
}

// ambiguityWarnings surfaces which short synonyms triggered a detection so
// the substring false-positive trade-off is at least visible to the caller.
func ambiguityWarnings(found []detection) []string {
	var out []string
	for _, d := range found {
		if shortSynonyms[d.Word] {
			out = append(out, fmt.Sprintf("'%s' 키워드로 %s을(를) 인식했습니다. 의도와 다르면 제거해주세요", d.Word, defaultLabel(d.Type)))
		}
	}
	return out
}

// componentSuggestions offers next-step edits for an accepted spec.
func componentSuggestions(s *spec.Spec) []string {
	var out []string
	if !s.HasType(spec.NodeFirewall) && !s.HasType(spec.NodeWAF) {
		out = append(out, "방화벽 추가")
	}
	if !s.HasType(spec.NodeLoadBalancer) {
		out = append(out, "로드밸런서 추가")
	}
	if !s.HasType(spec.NodeDBServer) {
		out = append(out, "DB서버 추가")
	}
	return out
}

// templateSuggestions names the available templates for an unresolved prompt.
func (p *Parser) templateSuggestions() []string {
	out := make([]string, 0, len(p.templates))
	for i := range p.templates {
		out = append(out, fmt.Sprintf("템플릿 사용: %s (예: \"%s\")", p.templates[i].ID, p.templates[i].Keywords[0]))
	}
	return out
}
