package provider

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/containership/fleetscaler/pkg/fleet"
)

const (
	operationList   = "list_groups"
	operationUpdate = "update_capacity"

	resultSuccess   = "success"
	resultTransient = "transient_error"
	resultPermanent = "permanent_error"
)

// CallMetrics holds the collectors used by instrumented gateways
type CallMetrics struct {
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewCallMetrics creates the gateway call collectors and registers them with
// the given registerer
func NewCallMetrics(registerer prometheus.Registerer) (*CallMetrics, error) {
	m := &CallMetrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleetscaler",
			Subsystem: "provider",
			Name:      "calls_total",
			Help:      "Number of provider API calls by gateway, operation and result.",
		}, []string{"gateway", "operation", "result"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fleetscaler",
			Subsystem: "provider",
			Name:      "call_duration_seconds",
			Help:      "Latency of provider API calls by gateway and operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"gateway", "operation"}),
	}

	for _, c := range []prometheus.Collector{m.calls, m.latency} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

type instrumentedGateway struct {
	gateway Gateway
	metrics *CallMetrics
}

// NewInstrumented wraps a Gateway so that every call is counted and timed
func NewInstrumented(gateway Gateway, metrics *CallMetrics) Gateway {
	return &instrumentedGateway{
		gateway: gateway,
		metrics: metrics,
	}
}

func (g *instrumentedGateway) Name() string {
	return g.gateway.Name()
}

func (g *instrumentedGateway) ListGroups(ctx context.Context, token string) ([]fleet.Group, string, error) {
	defer g.observe(operationList, time.Now())

	groups, next, err := g.gateway.ListGroups(ctx, token)
	g.count(operationList, err)

	return groups, next, err
}

func (g *instrumentedGateway) UpdateCapacity(ctx context.Context, group string, desired int) error {
	defer g.observe(operationUpdate, time.Now())

	err := g.gateway.UpdateCapacity(ctx, group, desired)
	g.count(operationUpdate, err)

	return err
}

func (g *instrumentedGateway) observe(operation string, start time.Time) {
	g.metrics.latency.WithLabelValues(g.gateway.Name(), operation).Observe(time.Since(start).Seconds())
}

func (g *instrumentedGateway) count(operation string, err error) {
	result := resultSuccess
	if err != nil {
		result = resultPermanent
		if IsTransient(err) {
			result = resultTransient
		}
	}

	g.metrics.calls.WithLabelValues(g.gateway.Name(), operation, result).Inc()
}
