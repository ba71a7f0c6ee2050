package app

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/containership/fleetscaler/pkg/decision"
	"github.com/containership/fleetscaler/pkg/reconcile"
)

func newReconcileCmd() *cobra.Command {
	var (
		request decision.Request
		desired int
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Apply a single capacity decision",
		Example: `  fleetscaler reconcile --name web-asg --desired 6
  fleetscaler reconcile --tag role=batch --tag env=prod --adjust -25% --source nightly`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("desired") {
				request.Desired = &desired
			}

			if err := request.Validate(); err != nil {
				return errors.Wrap(err, "invalid decision")
			}

			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.close()

			decisions, err := a.decide(cmd.Context(), []decision.Request{request})
			if err != nil {
				return err
			}

			outcome := a.engine.Reconcile(cmd.Context(), decisions[0])
			return printOutcomes(cmd.OutOrStdout(), []reconcile.Outcome{outcome})
		},
	}

	cmd.Flags().StringVar(&request.Name, "name", "", "select the group with this exact name")
	cmd.Flags().StringToStringVar(&request.Tags, "tag", nil, "select the group carrying this tag (key=value), may be repeated")
	cmd.Flags().IntVar(&desired, "desired", 0, "proposed desired capacity")
	cmd.Flags().StringVar(&request.Adjust, "adjust", "", "capacity change relative to the current desired capacity, e.g. +2 or -25%")
	cmd.Flags().StringVar(&request.Source, "source", "cli", "where the decision came from, recorded with the outcome")
	cmd.Flags().StringVar(&request.Provider, "provider", "", "provider to use (default is the configured default provider)")

	return cmd
}
