package parser

import (
	"fmt"
	"strings"

	"github.com/archsketch/archsketch/spec"
)

// synonym maps one trigger word to a component type. Matching is plain
// substring scanning over the normalized prompt.
type synonym struct {
	Word string
	Type spec.NodeType
}

// componentSynonyms is the scan table, ordered roughly from the network edge
// inward so that detection-order edge chaining produces a sensible flow.
// Korean terms, English terms and common abbreviations (FW, LB, WAS) all map
// to the same types.
//
// Substring scanning knowingly accepts false positives: "ips" matches inside
// "ipsum", "was" inside ordinary English prose. That ambiguity is part of
// the detector's contract and is pinned by tests; do not "fix" it by
// switching to word-boundary matching.
var componentSynonyms = []synonym{
	{"방화벽", spec.NodeFirewall},
	{"firewall", spec.NodeFirewall},
	{"fw", spec.NodeFirewall},
	{"웹방화벽", spec.NodeWAF},
	{"웹 방화벽", spec.NodeWAF},
	{"waf", spec.NodeWAF},
	{"침입탐지", spec.NodeIDSIPS},
	{"침입방지", spec.NodeIDSIPS},
	{"intrusion", spec.NodeIDSIPS},
	{"ids", spec.NodeIDSIPS},
	{"ips", spec.NodeIDSIPS},
	{"브이피엔", spec.NodeVPNGateway},
	{"vpn", spec.NodeVPNGateway},
	{"로드밸런서", spec.NodeLoadBalancer},
	{"로드 밸런서", spec.NodeLoadBalancer},
	{"load balancer", spec.NodeLoadBalancer},
	{"loadbalancer", spec.NodeLoadBalancer},
	{"lb", spec.NodeLoadBalancer},
	{"l4", spec.NodeLoadBalancer},
	{"l7", spec.NodeLoadBalancer},
	{"cdn", spec.NodeCDN},
	{"씨디엔", spec.NodeCDN},
	{"dns", spec.NodeDNS},
	{"네임서버", spec.NodeDNS},
	{"웹서버", spec.NodeWebServer},
	{"웹 서버", spec.NodeWebServer},
	{"web server", spec.NodeWebServer},
	{"webserver", spec.NodeWebServer},
	{"nginx", spec.NodeWebServer},
	{"apache", spec.NodeWebServer},
	{"앱서버", spec.NodeAppServer},
	{"애플리케이션 서버", spec.NodeAppServer},
	{"app server", spec.NodeAppServer},
	{"application server", spec.NodeAppServer},
	{"tomcat", spec.NodeAppServer},
	{"was", spec.NodeAppServer},
	{"캐시", spec.NodeCacheServer},
	{"redis", spec.NodeCacheServer},
	{"memcached", spec.NodeCacheServer},
	{"cache", spec.NodeCacheServer},
	{"데이터베이스", spec.NodeDBServer},
	{"디비", spec.NodeDBServer},
	{"database", spec.NodeDBServer},
	{"mysql", spec.NodeDBServer},
	{"postgres", spec.NodeDBServer},
	{"oracle", spec.NodeDBServer},
	{"db", spec.NodeDBServer},
	{"스토리지", spec.NodeStorage},
	{"storage", spec.NodeStorage},
	{"nas", spec.NodeStorage},
	{"모니터링", spec.NodeMonitoring},
	{"monitoring", spec.NodeMonitoring},
	{"관제", spec.NodeMonitoring},
}

// detection is one matched component with the synonym that triggered it.
type detection struct {
	Type spec.NodeType
	Word string
}

// scanComponents returns every distinct component type whose synonym occurs
// in the normalized prompt, in scan-table order. Each type is reported once,
// with the first synonym that matched it.
func scanComponents(normalized string) []detection {
	var found []detection
	seen := make(map[spec.NodeType]bool)
	for _, s := range componentSynonyms {
		if seen[s.Type] {
			continue
		}
		if strings.Contains(normalized, s.Word) {
			seen[s.Type] = true
			found = append(found, detection{Type: s.Type, Word: s.Word})
		}
	}
	return found
}

// detectComponents synthesizes a minimal spec from the components named in
// the prompt. A user node is always injected as the implicit traffic origin,
// and edges chain the components in detection order. This is best-effort
// flow inference, not a topology solver.
func detectComponents(normalized string) (*spec.Spec, []detection, bool) {
	found := scanComponents(normalized)
	if len(found) == 0 {
		return nil, nil, false
	}

	s := &spec.Spec{
		Name:        "구성요소 기반 아키텍처",
		Description: "프롬프트에서 인식한 구성요소로 생성된 아키텍처",
		Nodes: []spec.Node{
			{ID: "user", Type: spec.NodeUser, Label: "사용자", Tier: spec.TierExternal},
		},
	}

	prev := "user"
	for _, d := range found {
		id := componentID(s, d.Type)
		s.Nodes = append(s.Nodes, spec.Node{
			ID:    id,
			Type:  d.Type,
			Label: defaultLabel(d.Type),
			Tier:  d.Type.DefaultTier(),
		})
		s.Connections = append(s.Connections, spec.Connection{Source: prev, Target: id})
		prev = id
	}

	return s, found, true
}

// componentID derives a readable, spec-unique id for a detected component.
func componentID(s *spec.Spec, t spec.NodeType) string {
	id := string(t)
	for n := 2; s.HasNode(id); n++ {
		id = fmt.Sprintf("%s-%d", t, n)
	}
	return id
}

// defaultLabel is the localized display name for a component type.
func defaultLabel(t spec.NodeType) string {
	switch t {
	case spec.NodeUser:
		return "사용자"
	case spec.NodeFirewall:
		return "방화벽"
	case spec.NodeWAF:
		return "WAF"
	case spec.NodeIDSIPS:
		return "IDS/IPS"
	case spec.NodeVPNGateway:
		return "VPN Gateway"
	case spec.NodeLoadBalancer:
		return "로드밸런서"
	case spec.NodeCDN:
		return "CDN"
	case spec.NodeDNS:
		return "DNS"
	case spec.NodeWebServer:
		return "웹서버"
	case spec.NodeAppServer:
		return "앱서버 (WAS)"
	case spec.NodeCacheServer:
		return "캐시서버"
	case spec.NodeDBServer:
		return "DB서버"
	case spec.NodeStorage:
		return "스토리지"
	case spec.NodeMonitoring:
		return "모니터링"
	default:
		return string(t)
	}
}
