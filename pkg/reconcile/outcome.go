package reconcile

import (
	"fmt"

	"github.com/containership/fleetscaler/pkg/events"
	"github.com/containership/fleetscaler/pkg/guardrail"
)

// OutcomeKind is the terminal state of a reconciliation cycle
type OutcomeKind int

const (
	// NoChangeNeeded means the group was already at the proposed capacity
	NoChangeNeeded OutcomeKind = iota
	// Applied means the provider accepted the new desired capacity
	Applied
	// Rejected means the proposal was outside the group's guard rails
	Rejected
	// Failed means the cycle could not complete
	Failed
)

// String is a stringer for OutcomeKind
func (k OutcomeKind) String() string {
	switch k {
	case NoChangeNeeded:
		return "NoChangeNeeded"
	case Applied:
		return "Applied"
	case Rejected:
		return "Rejected"
	case Failed:
		return "Failed"
	}

	return "unknown"
}

// Outcome describes how a single reconciliation cycle ended. Every cycle
// produces exactly one.
type Outcome struct {
	Kind OutcomeKind

	// Fleet is the filter the decision was made for
	Fleet    string
	Provider string
	// Group is the resolved group name; empty if resolution failed
	Group string
	// Source is copied from the decision
	Source string

	Previous  int
	Attempted int

	// GuardRail is the guard rail evaluation, if one happened
	GuardRail *guardrail.Result

	// Attempts is the number of update calls submitted to the provider
	Attempts int

	Reason string
	Err    error
}

// Event returns the event reason that best describes the outcome
func (o Outcome) Event() string {
	switch o.Kind {
	case NoChangeNeeded:
		return events.ScaleIgnored
	case Rejected:
		return events.ScaleRejected
	case Failed:
		return events.ScaleError
	case Applied:
		if o.Attempted < o.Previous {
			return events.ScaledDown
		}
		return events.ScaledUp
	}

	return events.ScaleError
}

// String returns a one-line summary suitable for logs and CLI output
func (o Outcome) String() string {
	group := o.Group
	if group == "" {
		group = "<unresolved>"
	}

	s := fmt.Sprintf("%s fleet=%s provider=%s group=%s previous=%d attempted=%d",
		o.Kind, o.Fleet, o.Provider, group, o.Previous, o.Attempted)

	if o.Attempts > 0 {
		s += fmt.Sprintf(" attempts=%d", o.Attempts)
	}

	if o.Reason != "" {
		s += fmt.Sprintf(": %s", o.Reason)
	}

	return s
}

// Reporter receives every terminal Outcome
type Reporter interface {
	Report(o Outcome)
}

// ReporterFunc adapts a function to a Reporter
type ReporterFunc func(o Outcome)

// Report implements Reporter
func (f ReporterFunc) Report(o Outcome) {
	f(o)
}
