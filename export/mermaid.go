package export

import (
	"fmt"
	"strings"

	"github.com/archsketch/archsketch/spec"
)

// Mermaid renders the spec as a Mermaid flowchart, grouped by tier.
func Mermaid(s *spec.Spec) (string, error) {
	if err := s.Validate(); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}

	var b strings.Builder
	b.WriteString("flowchart TD\n")

	for _, tier := range []spec.Tier{spec.TierExternal, spec.TierDMZ, spec.TierInternal, spec.TierData} {
		var members []spec.Node
		for _, n := range s.Nodes {
			if n.Tier == tier {
				members = append(members, n)
			}
		}
		if len(members) == 0 {
			continue
		}

		fmt.Fprintf(&b, "    subgraph %s\n", tier)
		for _, n := range members {
			fmt.Fprintf(&b, "        %s[%q]\n", mermaidID(n.ID), n.Label)
		}
		b.WriteString("    end\n")
	}

	// Unzoned nodes sit outside any subgraph.
	for _, n := range s.Nodes {
		if n.Tier == "" {
			fmt.Fprintf(&b, "    %s[%q]\n", mermaidID(n.ID), n.Label)
		}
	}

	for _, c := range s.Connections {
		fmt.Fprintf(&b, "    %s --> %s\n", mermaidID(c.Source), mermaidID(c.Target))
	}

	return b.String(), nil
}

// mermaidID strips characters Mermaid treats as syntax.
func mermaidID(id string) string {
	return strings.NewReplacer("-", "_", " ", "_", ".", "_").Replace(id)
}
