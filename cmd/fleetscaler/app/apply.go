package app

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/containership/cluster-manager/pkg/log"

	"github.com/containership/fleetscaler/pkg/decision"
)

func newApplyCmd() *cobra.Command {
	var (
		file     string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a file of capacity decisions",
		Long: `Apply reconciles every decision in a YAML file concurrently. With --interval
the file is re-read and applied on every tick until interrupted; relative
adjustments are not allowed in that mode since they would compound.`,
		Example: `  fleetscaler apply -f decisions.yaml
  fleetscaler apply -f decisions.yaml --interval 1m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("a decision file must be provided with -f")
			}

			if interval < 0 {
				return errors.Errorf("interval must not be negative, got %s", interval)
			}

			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.close()

			if interval == 0 {
				return a.applyFile(cmd, file, false)
			}

			log.Infof("Applying %s every %s", file, interval)
			wait.UntilWithContext(cmd.Context(), func(ctx context.Context) {
				if err := a.applyFile(cmd, file, true); err != nil {
					log.Errorf("Applying %s: %s", file, err)
				}
			}, interval)

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "filename", "f", "", "YAML file of decisions")
	cmd.Flags().DurationVar(&interval, "interval", 0, "re-apply the file at this interval until interrupted")

	return cmd
}

func (a *application) applyFile(cmd *cobra.Command, file string, repeating bool) error {
	requests, err := decision.LoadFile(file)
	if err != nil {
		return err
	}

	if repeating {
		for i, r := range requests {
			if r.Relative() {
				return errors.Errorf("decision %d: relative adjustment %q can't be applied repeatedly", i, r.Adjust)
			}
		}
	}

	decisions, err := a.decide(cmd.Context(), requests)
	if err != nil {
		return err
	}

	outcomes := a.engine.Run(cmd.Context(), decisions)
	return printOutcomes(cmd.OutOrStdout(), outcomes)
}
