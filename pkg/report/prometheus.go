package report

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/containership/fleetscaler/pkg/reconcile"
)

// Prometheus exports reconciliation outcomes as Prometheus metrics
type Prometheus struct {
	outcomes *prometheus.CounterVec
	attempts *prometheus.CounterVec
	desired  *prometheus.GaugeVec
}

// NewPrometheus creates the outcome collectors and registers them
func NewPrometheus(registerer prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleetscaler",
			Name:      "reconciliations_total",
			Help:      "Reconciliation cycles by provider, outcome and event reason.",
		}, []string{"provider", "outcome", "reason"}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleetscaler",
			Name:      "update_attempts_total",
			Help:      "Capacity update calls submitted by provider and group.",
		}, []string{"provider", "group"}),
		desired: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "fleetscaler",
			Name:      "desired_capacity",
			Help:      "Last known desired capacity of each reconciled group.",
		}, []string{"provider", "group"}),
	}

	for _, c := range []prometheus.Collector{p.outcomes, p.attempts, p.desired} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Report implements reconcile.Reporter
func (p *Prometheus) Report(o reconcile.Outcome) {
	p.outcomes.WithLabelValues(o.Provider, o.Kind.String(), o.Event()).Inc()

	if o.Group == "" {
		return
	}

	if o.Attempts > 0 {
		p.attempts.WithLabelValues(o.Provider, o.Group).Add(float64(o.Attempts))
	}

	current := o.Previous
	if o.Kind == reconcile.Applied {
		current = o.Attempted
	}
	p.desired.WithLabelValues(o.Provider, o.Group).Set(float64(current))
}
