package app

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/containership/fleetscaler/pkg/buildinfo"
)

func newVersionCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case "":
				fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
			case "json":
				b, err := json.Marshal(buildinfo.Get())
				if err != nil {
					return errors.Wrap(err, "encoding build info")
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
			default:
				return errors.Errorf("unknown output format %q", output)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output format, empty or json")

	return cmd
}
