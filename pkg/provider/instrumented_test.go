package provider

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/containership/fleetscaler/pkg/fleet"
)

type scriptedGateway struct {
	stubGateway
	updateErrs []error
}

func (g *scriptedGateway) ListGroups(ctx context.Context, token string) ([]fleet.Group, string, error) {
	return []fleet.Group{{Name: "web"}}, "", nil
}

func (g *scriptedGateway) UpdateCapacity(ctx context.Context, group string, desired int) error {
	err := g.updateErrs[0]
	g.updateErrs = g.updateErrs[1:]
	return err
}

func TestInstrumentedGateway(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewCallMetrics(registry)
	require.NoError(t, err)

	_, err = NewCallMetrics(registry)
	assert.Error(t, err, "collectors can only be registered once")

	inner := &scriptedGateway{
		stubGateway: stubGateway{name: "fake"},
		updateErrs: []error{
			Transient(errors.New("throttled")),
			Permanent(errors.New("denied")),
			nil,
		},
	}
	gw := NewInstrumented(inner, m)
	assert.Equal(t, "fake", gw.Name())

	groups, next, err := gw.ListGroups(context.Background(), "")
	assert.NoError(t, err)
	assert.Empty(t, next)
	assert.Len(t, groups, 1, "results pass through")

	assert.Error(t, gw.UpdateCapacity(context.Background(), "web", 2))
	assert.Error(t, gw.UpdateCapacity(context.Background(), "web", 2))
	assert.NoError(t, gw.UpdateCapacity(context.Background(), "web", 2))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.calls.WithLabelValues("fake", operationList, resultSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.calls.WithLabelValues("fake", operationUpdate, resultTransient)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.calls.WithLabelValues("fake", operationUpdate, resultPermanent)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.calls.WithLabelValues("fake", operationUpdate, resultSuccess)))
}
