package report

import (
	"github.com/containership/fleetscaler/pkg/reconcile"
)

// Multi fans an outcome out to several reporters in order
type Multi []reconcile.Reporter

// Report implements reconcile.Reporter
func (m Multi) Report(o reconcile.Outcome) {
	for _, r := range m {
		if r != nil {
			r.Report(o)
		}
	}
}
