package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	ThreatsDetected = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldgate_threats_detected_total",
			Help: "Total number of threats detected, by kind and severity",
		},
		[]string{"kind", "severity"},
	)

	SanitizationsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldgate_sanitizations_total",
			Help: "Total number of field sanitizations, by field type and outcome",
		},
		[]string{"field_type", "outcome"},
	)

	BatchVerdicts = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldgate_batch_verdicts_total",
			Help: "Total number of batch sanitizations, by outcome",
		},
		[]string{"outcome"},
	)

	SecurityEventsEmitted = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "fieldgate_security_events_total",
			Help: "Total number of security events emitted to the event pipeline",
		},
	)
)

// Registry exposes the private registry for scrape-endpoint wiring by the
// embedding application.
func Registry() *prometheus.Registry {
	return registry
}

// Outcome converts a verdict flag to the metric label value.
func Outcome(safe bool) string {
	if safe {
		return "safe"
	}
	return "unsafe"
}
