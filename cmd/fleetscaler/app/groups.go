package app

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/containership/fleetscaler/pkg/fleet"
	"github.com/containership/fleetscaler/pkg/selector"
)

func newCapacityCmd() *cobra.Command {
	var providerName string

	cmd := &cobra.Command{
		Use:   "capacity NAME",
		Short: "Show the current capacity of a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.close()

			gw, err := a.gateway(providerName)
			if err != nil {
				return err
			}

			roster, err := selector.Fetch(cmd.Context(), gw, a.config.CallTimeout)
			if err != nil {
				return err
			}

			g, err := selector.FindByName(roster, args[0])
			if err != nil {
				return err
			}

			printGroups(cmd.OutOrStdout(), []fleet.Group{g})
			return nil
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "", "provider to use (default is the configured default provider)")

	return cmd
}

func newGroupsCmd() *cobra.Command {
	var (
		providerName string
		tags         map[string]string
	)

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "List the groups of a provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication()
			if err != nil {
				return err
			}
			defer a.close()

			gw, err := a.gateway(providerName)
			if err != nil {
				return err
			}

			roster, err := selector.Fetch(cmd.Context(), gw, a.config.CallTimeout)
			if err != nil {
				return err
			}

			if len(tags) > 0 {
				roster = filterGroups(roster, fleet.ByTags(tags))
			}

			printGroups(cmd.OutOrStdout(), roster)
			return nil
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "", "provider to use (default is the configured default provider)")
	cmd.Flags().StringToStringVar(&tags, "tag", nil, "only list groups carrying this tag (key=value), may be repeated")

	return cmd
}

func filterGroups(groups []fleet.Group, f fleet.Filter) []fleet.Group {
	var matched []fleet.Group
	for _, g := range groups {
		if selector.Matches(f, g) {
			matched = append(matched, g)
		}
	}

	return matched
}

func printGroups(out io.Writer, groups []fleet.Group) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESIRED\tMIN\tMAX\tACTIVE\tTAGS")

	for _, g := range groups {
		tags := make([]string, 0, len(g.Tags))
		for _, t := range g.Tags {
			tags = append(tags, t.Key+"="+t.Value)
		}

		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%t\t%s\n",
			g.Name, g.Desired, g.Min, g.Max, g.Active(), strings.Join(tags, ","))
	}

	w.Flush()
}
