package guardrail

import (
	"fmt"

	"github.com/containership/fleetscaler/pkg/fleet"
)

// Kind is the classification of a proposed capacity against a group's bounds
type Kind int

const (
	// Accept means the proposal is within bounds and differs from the
	// current desired capacity
	Accept Kind = iota
	// NoOp means the proposal equals the current desired capacity
	NoOp
	// RejectAboveMax means the proposal exceeds the group's max
	RejectAboveMax
	// RejectBelowMin means the proposal is less than the group's min
	RejectBelowMin
)

// String is a stringer for Kind
func (k Kind) String() string {
	switch k {
	case Accept:
		return "accept"
	case NoOp:
		return "noop"
	case RejectAboveMax:
		return "reject_above_max"
	case RejectBelowMin:
		return "reject_below_min"
	}

	return "unknown"
}

// Result is the outcome of evaluating a proposal. Bound holds the violated
// limit for rejections and the accepted capacity for Accept.
type Result struct {
	Kind  Kind
	Bound int
}

// Rejected returns true for either rejection kind
func (r Result) Rejected() bool {
	return r.Kind == RejectAboveMax || r.Kind == RejectBelowMin
}

// Reason returns a human readable explanation of the result
func (r Result) Reason(group fleet.Group, proposed int) string {
	switch r.Kind {
	case NoOp:
		return fmt.Sprintf("desired capacity is already %d", group.Desired)
	case RejectAboveMax:
		return fmt.Sprintf("desired capacity %d greater than the maximum of %d", proposed, r.Bound)
	case RejectBelowMin:
		return fmt.Sprintf("desired capacity %d less than the minimum of %d", proposed, r.Bound)
	case Accept:
		return fmt.Sprintf("desired capacity %d within [%d, %d]", proposed, group.Min, group.Max)
	}

	return "unknown"
}

// Evaluate classifies a proposed desired capacity against the group's
// bounds. Equality with the current desired capacity is checked first, then
// max, then min, so a misconfigured group with max < min always reports
// RejectAboveMax for values above max.
func Evaluate(group fleet.Group, proposed int) Result {
	if proposed == group.Desired {
		return Result{Kind: NoOp, Bound: group.Desired}
	}

	if proposed > group.Max {
		return Result{Kind: RejectAboveMax, Bound: group.Max}
	}

	if proposed < group.Min {
		return Result{Kind: RejectBelowMin, Bound: group.Min}
	}

	return Result{Kind: Accept, Bound: proposed}
}
