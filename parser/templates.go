package parser

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/archsketch/archsketch/spec"
)

// Template is a named, hand-authored reference spec with its trigger
// keywords. A template matches when any keyword is a substring of the
// normalized prompt.
type Template struct {
	ID       string    `yaml:"id"`
	Keywords []string  `yaml:"keywords"`
	Spec     spec.Spec `yaml:"spec"`
}

// BuiltinTemplates returns the reference template table.
//
// Table order is load-bearing: resolution is first-match-wins in declaration
// order, and several downstream behaviors assert on this exact ordering
// (vpn before hybrid, both before the generic tiers). Reorder with care.
func BuiltinTemplates() []Template {
	return []Template{
		{
			ID:       "vpn",
			Keywords: []string{"vpn", "브이피엔", "site-to-site", "사이트 투 사이트", "원격 접속", "remote access"},
			Spec: spec.Spec{
				Name:        "VPN 접속 아키텍처",
				Description: "VPN 게이트웨이를 통한 원격 접속 구성",
				Nodes: []spec.Node{
					{ID: "user", Type: spec.NodeUser, Label: "사용자", Tier: spec.TierExternal},
					{ID: "vpn-gw", Type: spec.NodeVPNGateway, Label: "VPN Gateway", Tier: spec.TierDMZ},
					{ID: "fw", Type: spec.NodeFirewall, Label: "방화벽", Tier: spec.TierDMZ},
					{ID: "app", Type: spec.NodeAppServer, Label: "App Server", Tier: spec.TierInternal},
					{ID: "db", Type: spec.NodeDBServer, Label: "DB Server", Tier: spec.TierData},
				},
				Connections: []spec.Connection{
					{Source: "user", Target: "vpn-gw"},
					{Source: "vpn-gw", Target: "fw"},
					{Source: "fw", Target: "app"},
					{Source: "app", Target: "db"},
				},
			},
		},
		{
			ID:       "hybrid",
			Keywords: []string{"hybrid", "하이브리드", "온프레미스", "on-prem", "멀티클라우드", "multi-cloud"},
			Spec: spec.Spec{
				Name:        "하이브리드 클라우드 아키텍처",
				Description: "온프레미스와 클라우드를 연결한 구성",
				Nodes: []spec.Node{
					{ID: "user", Type: spec.NodeUser, Label: "사용자", Tier: spec.TierExternal},
					{ID: "fw", Type: spec.NodeFirewall, Label: "방화벽", Tier: spec.TierDMZ},
					{ID: "lb", Type: spec.NodeLoadBalancer, Label: "Load Balancer", Tier: spec.TierDMZ},
					{ID: "web", Type: spec.NodeWebServer, Label: "Web Server", Tier: spec.TierDMZ},
					{ID: "db", Type: spec.NodeDBServer, Label: "DB Server", Tier: spec.TierData},
					{ID: "storage", Type: spec.NodeStorage, Label: "Cloud Storage", Tier: spec.TierData},
				},
				Connections: []spec.Connection{
					{Source: "user", Target: "fw"},
					{Source: "fw", Target: "lb"},
					{Source: "lb", Target: "web"},
					{Source: "web", Target: "db"},
					{Source: "web", Target: "storage"},
				},
			},
		},
		{
			ID:       "3tier",
			Keywords: []string{"3티어", "3-tier", "3tier", "three tier", "three-tier", "삼티어", "쓰리티어", "3계층"},
			Spec: spec.Spec{
				Name:        "3티어 웹 아키텍처",
				Description: "웹/앱/DB 3계층 구성",
				Nodes: []spec.Node{
					{ID: "user", Type: spec.NodeUser, Label: "사용자", Tier: spec.TierExternal},
					{ID: "fw", Type: spec.NodeFirewall, Label: "방화벽", Tier: spec.TierDMZ},
					{ID: "web", Type: spec.NodeWebServer, Label: "Web Server", Tier: spec.TierDMZ},
					{ID: "app", Type: spec.NodeAppServer, Label: "App Server (WAS)", Tier: spec.TierInternal},
					{ID: "db", Type: spec.NodeDBServer, Label: "DB Server", Tier: spec.TierData},
				},
				Connections: []spec.Connection{
					{Source: "user", Target: "fw"},
					{Source: "fw", Target: "web"},
					{Source: "web", Target: "app"},
					{Source: "app", Target: "db"},
				},
			},
		},
		{
			ID:       "simple-waf",
			Keywords: []string{"firewall", "방화벽", "waf", "웹방화벽", "웹 방화벽", "보안"},
			Spec: spec.Spec{
				Name:        "WAF 웹 보안 아키텍처",
				Description: "WAF가 웹 계층을 보호하는 구성",
				Nodes: []spec.Node{
					{ID: "user", Type: spec.NodeUser, Label: "사용자", Tier: spec.TierExternal},
					{ID: "fw", Type: spec.NodeFirewall, Label: "방화벽", Tier: spec.TierDMZ},
					{ID: "waf", Type: spec.NodeWAF, Label: "WAF", Tier: spec.TierDMZ},
					{ID: "web", Type: spec.NodeWebServer, Label: "Web Server", Tier: spec.TierDMZ},
					{ID: "db", Type: spec.NodeDBServer, Label: "DB Server", Tier: spec.TierData},
				},
				Connections: []spec.Connection{
					{Source: "user", Target: "fw"},
					{Source: "fw", Target: "waf"},
					{Source: "waf", Target: "web"},
					{Source: "web", Target: "db"},
				},
			},
		},
		{
			ID:       "msa",
			Keywords: []string{"msa", "마이크로서비스", "microservice", "kubernetes", "쿠버네티스", "k8s"},
			Spec: spec.Spec{
				Name:        "마이크로서비스 아키텍처",
				Description: "로드밸런서 뒤의 마이크로서비스 구성",
				Nodes: []spec.Node{
					{ID: "user", Type: spec.NodeUser, Label: "사용자", Tier: spec.TierExternal},
					{ID: "lb", Type: spec.NodeLoadBalancer, Label: "Load Balancer", Tier: spec.TierDMZ},
					{ID: "web", Type: spec.NodeWebServer, Label: "Web Frontend", Tier: spec.TierDMZ},
					{ID: "app", Type: spec.NodeAppServer, Label: "Service Cluster", Tier: spec.TierInternal},
					{ID: "cache", Type: spec.NodeCacheServer, Label: "Cache", Tier: spec.TierInternal},
					{ID: "db", Type: spec.NodeDBServer, Label: "DB Server", Tier: spec.TierData},
				},
				Connections: []spec.Connection{
					{Source: "user", Target: "lb"},
					{Source: "lb", Target: "web"},
					{Source: "web", Target: "app"},
					{Source: "app", Target: "cache"},
					{Source: "app", Target: "db"},
				},
			},
		},
	}
}

// LoadTemplates reads a template table from a YAML file. Declaration order
// in the file is preserved, which is what decides match precedence.
func LoadTemplates(path string) ([]Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}

	var templates []Template
	if err := yaml.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	for i := range templates {
		t := &templates[i]
		if t.ID == "" {
			return nil, fmt.Errorf("template at index %d has empty id", i)
		}
		if len(t.Keywords) == 0 {
			return nil, fmt.Errorf("template %q has no keywords", t.ID)
		}
		if err := t.Spec.Validate(); err != nil {
			return nil, fmt.Errorf("template %q: %w", t.ID, err)
		}
	}

	return templates, nil
}
