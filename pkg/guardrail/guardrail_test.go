package guardrail

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/containership/fleetscaler/pkg/fleet"
)

var web = fleet.Group{Name: "web", Desired: 3, Min: 1, Max: 5}

type evaluateTest struct {
	group    fleet.Group
	proposed int

	expected Result
	message  string
}

var evaluateTests = []evaluateTest{
	{
		group:    web,
		proposed: 4,
		expected: Result{Kind: Accept, Bound: 4},
		message:  "scale up within bounds",
	},
	{
		group:    web,
		proposed: 3,
		expected: Result{Kind: NoOp, Bound: 3},
		message:  "unchanged target is a noop",
	},
	{
		group:    web,
		proposed: 9,
		expected: Result{Kind: RejectAboveMax, Bound: 5},
		message:  "above max",
	},
	{
		group:    web,
		proposed: 0,
		expected: Result{Kind: RejectBelowMin, Bound: 1},
		message:  "below min",
	},
	{
		group:    web,
		proposed: 5,
		expected: Result{Kind: Accept, Bound: 5},
		message:  "max is inclusive",
	},
	{
		group:    web,
		proposed: 1,
		expected: Result{Kind: Accept, Bound: 1},
		message:  "min is inclusive",
	},
	{
		group:    fleet.Group{Desired: 3, Min: 6, Max: 2},
		proposed: 4,
		expected: Result{Kind: RejectAboveMax, Bound: 2},
		message:  "max is checked before min when max < min",
	},
	{
		group:    fleet.Group{Desired: 3, Min: 6, Max: 2},
		proposed: 1,
		expected: Result{Kind: RejectBelowMin, Bound: 6},
		message:  "below both bounds of a misconfigured group",
	},
	{
		group:    fleet.Group{Desired: 9, Min: 1, Max: 5},
		proposed: 9,
		expected: Result{Kind: NoOp, Bound: 9},
		message:  "noop is checked before bounds",
	},
}

func TestEvaluate(t *testing.T) {
	for _, test := range evaluateTests {
		result := Evaluate(test.group, test.proposed)
		assert.Equal(t, test.expected, result, test.message)
	}
}

func TestEvaluateProperties(t *testing.T) {
	for min := 0; min <= 4; min++ {
		for max := 0; max <= 6; max++ {
			for desired := 0; desired <= 6; desired++ {
				g := fleet.Group{Desired: desired, Min: min, Max: max}
				for proposed := -1; proposed <= 8; proposed++ {
					r := Evaluate(g, proposed)
					switch {
					case proposed == desired:
						assert.Equal(t, NoOp, r.Kind)
					case proposed > max:
						assert.Equal(t, RejectAboveMax, r.Kind, "above max regardless of min")
					case proposed < min:
						assert.Equal(t, RejectBelowMin, r.Kind)
					default:
						assert.Equal(t, Accept, r.Kind)
					}
				}
			}
		}
	}
}

func TestRejected(t *testing.T) {
	assert.True(t, Result{Kind: RejectAboveMax}.Rejected())
	assert.True(t, Result{Kind: RejectBelowMin}.Rejected())
	assert.False(t, Result{Kind: Accept}.Rejected())
	assert.False(t, Result{Kind: NoOp}.Rejected())
}

func TestReason(t *testing.T) {
	assert.Equal(t, "desired capacity 9 greater than the maximum of 5", Evaluate(web, 9).Reason(web, 9))
	assert.Equal(t, "desired capacity 0 less than the minimum of 1", Evaluate(web, 0).Reason(web, 0))
	assert.Equal(t, "desired capacity is already 3", Evaluate(web, 3).Reason(web, 3))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "accept", Accept.String())
	assert.Equal(t, "reject_above_max", RejectAboveMax.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
