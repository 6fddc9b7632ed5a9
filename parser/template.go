package parser

import "strings"

// resolveTemplate matches the normalized prompt against the template table.
// The first table entry, in declaration order, with any keyword appearing as
// a substring of the prompt wins. A miss is an ordinary "try the next
// strategy" outcome, not an error.
func (p *Parser) resolveTemplate(normalized string) (*Template, bool) {
	for i := range p.templates {
		t := &p.templates[i]
		for _, kw := range t.Keywords {
			if strings.Contains(normalized, kw) {
				return t, true
			}
		}
	}
	return nil, false
}
