package parser

import "github.com/archsketch/archsketch/spec"

// fallbackSpec returns the guaranteed terminal case of resolution: a small
// WAF-fronted web tier. This path never fails, which is what makes Parse a
// total function over valid prompts.
func fallbackSpec() *spec.Spec {
	return &spec.Spec{
		Name:        "기본 웹 아키텍처",
		Description: "프롬프트를 해석하지 못해 기본 구성을 생성했습니다",
		Nodes: []spec.Node{
			{ID: "user", Type: spec.NodeUser, Label: "사용자", Tier: spec.TierExternal},
			{ID: "waf", Type: spec.NodeWAF, Label: "WAF", Tier: spec.TierDMZ},
			{ID: "web", Type: spec.NodeWebServer, Label: "웹서버", Tier: spec.TierDMZ},
		},
		Connections: []spec.Connection{
			{Source: "user", Target: "waf"},
			{Source: "waf", Target: "web"},
		},
	}
}
