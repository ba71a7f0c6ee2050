package app

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/containership/fleetscaler/pkg/decision"
	"github.com/containership/fleetscaler/pkg/fleet"
	"github.com/containership/fleetscaler/pkg/reconcile"
	"github.com/containership/fleetscaler/pkg/selector"
)

var errFailedOutcomes = errors.New("one or more reconciliations failed")

// decide turns requests into decisions. Relative requests are resolved
// against a roster fetched at most once per provider.
func (a *application) decide(ctx context.Context, requests []decision.Request) ([]fleet.Decision, error) {
	rosters := make(map[string]*selector.Roster)
	decisions := make([]fleet.Decision, 0, len(requests))

	for i, r := range requests {
		var roster []fleet.Group

		if r.Relative() {
			gw, err := a.gateway(r.Provider)
			if err != nil {
				return nil, errors.Wrapf(err, "decision %d", i)
			}

			rr, ok := rosters[gw.Name()]
			if !ok {
				rr = selector.NewRoster(gw, a.config.CallTimeout)
				rosters[gw.Name()] = rr
			}

			roster, err = rr.Load(ctx)
			if err != nil {
				return nil, errors.Wrapf(err, "decision %d: listing groups of provider %q", i, gw.Name())
			}
		}

		d, err := r.Decide(roster)
		if err != nil {
			return nil, errors.Wrapf(err, "decision %d", i)
		}

		decisions = append(decisions, d)
	}

	return decisions, nil
}

// printOutcomes writes one line per outcome and returns errFailedOutcomes if
// any of them failed
func printOutcomes(w io.Writer, outcomes []reconcile.Outcome) error {
	var err error
	for _, o := range outcomes {
		fmt.Fprintln(w, o.String())
		if o.Kind == reconcile.Failed {
			err = errFailedOutcomes
		}
	}

	return err
}
