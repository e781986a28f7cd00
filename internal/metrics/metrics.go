// Package metrics registers the Prometheus instrumentation for the LNS
// engine: iteration counts, objective values, mailbox depth and publish
// contention, grounded on github.com/prometheus/client_golang (the
// teacher pack's metrics dependency, otherwise unwired by the hospital
// scheduler's own code).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry bundles every metric the engine emits. Construct one per process
// with NewRegistry and pass it to actors/orchestrator at wiring time.
type Registry struct {
	IterationsTotal  *prometheus.CounterVec
	ObjectiveValue   *prometheus.GaugeVec
	MailboxDepth     *prometheus.GaugeVec
	PublishRetries   *prometheus.CounterVec
	ActorFatalErrors *prometheus.CounterVec
}

// NewRegistry registers every metric against reg (pass prometheus.DefaultRegisterer
// in production, a fresh prometheus.NewRegistry() in tests).
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)
	return &Registry{
		IterationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ordinator",
			Name:      "lns_iterations_total",
			Help:      "Number of LNS iterations run per actor.",
		}, []string{"asset", "actor_kind", "actor_id"}),
		ObjectiveValue: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ordinator",
			Name:      "objective_value",
			Help:      "Current published objective value per actor.",
		}, []string{"asset", "actor_kind", "actor_id"}),
		MailboxDepth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ordinator",
			Name:      "mailbox_depth",
			Help:      "Approximate number of queued messages per actor mailbox.",
		}, []string{"asset", "actor_kind", "actor_id"}),
		PublishRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ordinator",
			Name:      "fabric_publish_retries_total",
			Help:      "Number of CAS retries observed publishing to the Shared Solution Fabric.",
		}, []string{"asset"}),
		ActorFatalErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ordinator",
			Name:      "actor_fatal_errors_total",
			Help:      "Number of fatal actor errors that triggered an asset cancellation.",
		}, []string{"asset", "actor_kind", "actor_id"}),
	}
}
