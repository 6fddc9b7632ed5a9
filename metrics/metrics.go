// Package metrics exposes prometheus counters for the parsing and
// modification paths. Registration uses the default registry; serving
// /metrics is the embedding application's concern.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ParsesTotal counts parse submissions by outcome and resolution source.
	ParsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "archsketch",
		Subsystem: "parser",
		Name:      "parses_total",
		Help:      "Parse submissions by outcome (success, invalid) and source (template, component, fallback, incremental).",
	}, []string{"outcome", "source"})

	// ModificationsTotal counts LLM modification round-trips by outcome.
	ModificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "archsketch",
		Subsystem: "modifier",
		Name:      "modifications_total",
		Help:      "LLM modification requests by outcome (applied, rejected, failed).",
	}, []string{"outcome"})

	// SupersededTotal counts in-flight requests discarded by a newer one.
	SupersededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "archsketch",
		Subsystem: "session",
		Name:      "superseded_requests_total",
		Help:      "Requests whose results were fenced off by a newer submission.",
	})
)
