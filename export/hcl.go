// Package export renders architecture specs into external formats:
// a Terraform-style HCL skeleton and Mermaid flowchart text.
package export

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/archsketch/archsketch/spec"
)

// HCL renders the spec as a Terraform-style skeleton: one
// archsketch_component resource per node, with data-flow connections
// expressed as depends_on style references. The output is a starting point
// for real provisioning code, not runnable Terraform.
func HCL(s *spec.Spec) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	f := hclwrite.NewEmptyFile()
	root := f.Body()

	arch := hclwrite.NewBlock("archsketch_architecture", []string{sanitizeName(s.Name)})
	archBody := arch.Body()
	setAttrStr(archBody, "name", s.Name)
	setAttrStr(archBody, "description", s.Description)
	root.AppendBlock(arch)
	root.AppendNewline()

	outgoing := make(map[string][]string)
	for _, c := range s.Connections {
		outgoing[c.Source] = append(outgoing[c.Source], c.Target)
	}

	for _, n := range s.Nodes {
		block := hclwrite.NewBlock("resource", []string{"archsketch_component", sanitizeName(n.ID)})
		body := block.Body()
		setAttrStr(body, "component_type", string(n.Type))
		setAttrStr(body, "label", n.Label)
		setAttrStr(body, "tier", string(n.Tier))
		setAttrStr(body, "description", n.Description)

		if targets := outgoing[n.ID]; len(targets) > 0 {
			vals := make([]cty.Value, 0, len(targets))
			for _, t := range targets {
				vals = append(vals, cty.StringVal(sanitizeName(t)))
			}
			body.SetAttributeValue("connects_to", cty.ListVal(vals))
		}

		root.AppendBlock(block)
		root.AppendNewline()
	}

	return f.Bytes(), nil
}

// sanitizeName converts a node id to an HCL-safe identifier (node-1 -> node_1).
func sanitizeName(id string) string {
	out := strings.ReplaceAll(id, "-", "_")
	out = strings.ReplaceAll(out, " ", "_")
	if out == "" {
		out = "unnamed"
	}
	return out
}

// setAttrStr sets a string attribute, skipping empty values.
func setAttrStr(body *hclwrite.Body, name, value string) {
	if value != "" {
		body.SetAttributeValue(name, cty.StringVal(value))
	}
}
