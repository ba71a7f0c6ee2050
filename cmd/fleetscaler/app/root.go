// Package app implements the fleetscaler command line
package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/containership/cluster-manager/pkg/log"

	"github.com/containership/fleetscaler/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "fleetscaler",
	Short: "Converge autoscaling groups to decided capacities",
	Long: `fleetscaler applies capacity decisions to autoscaling groups on AWS and
DigitalOcean. A decision selects exactly one active group by name or tags and
proposes a desired capacity, which is applied only if it lies within the
group's min and max sizes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. It is cancelled by SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is ./fleetscaler.yaml or /etc/fleetscaler/fleetscaler.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.AddCommand(
		newReconcileCmd(),
		newApplyCmd(),
		newCapacityCmd(),
		newGroupsCmd(),
		newVersionCmd(),
	)
}

func initConfig() {
	v := viper.GetViper()

	// Set defaults first so they're available even without a config file
	config.SetDefaults(v)

	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("fleetscaler")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/fleetscaler")
	}

	config.BindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("Failed to read config file: %+v", err)
		}
		log.Debugf("No config file found, using defaults and environment")
		return
	}

	log.Infof("Using config file %s", v.ConfigFileUsed())
}
