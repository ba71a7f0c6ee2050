// Package config loads the process configuration of fleetscaler from a
// YAML file and FLEETSCALER_ environment overrides
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/containership/fleetscaler/pkg/reconcile"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. FLEETSCALER_RETRY_MAXATTEMPTS for retry.maxAttempts
const EnvPrefix = "FLEETSCALER"

const (
	defaultCallTimeout         = 30 * time.Second
	defaultWorkers             = 4
	defaultInfluxDBMeasurement = "reconciliations"
)

// Config is the top level configuration
type Config struct {
	Providers []ProviderConfig `mapstructure:"providers"`
	// DefaultProvider is used by decisions that don't name a provider. It
	// defaults to the only provider when exactly one is configured.
	DefaultProvider string `mapstructure:"defaultProvider"`

	Retry       reconcile.RetryPolicy `mapstructure:"retry"`
	CallTimeout time.Duration         `mapstructure:"callTimeout"`
	Workers     int                   `mapstructure:"workers"`

	Metrics MetricsConfig `mapstructure:"metrics"`
	Audit   AuditConfig   `mapstructure:"audit"`
}

// ProviderConfig configures a single named gateway. Configuration is passed
// through to the gateway of the given type, which validates it.
type ProviderConfig struct {
	Name          string            `mapstructure:"name"`
	Type          string            `mapstructure:"type"`
	Configuration map[string]string `mapstructure:"configuration"`
}

// MetricsConfig configures the Prometheus listener
type MetricsConfig struct {
	// Address is the listen address for /metrics; empty disables it
	Address string `mapstructure:"address"`
}

// AuditConfig configures where outcomes are recorded besides the log
type AuditConfig struct {
	InfluxDB InfluxDBConfig `mapstructure:"influxdb"`
}

// InfluxDBConfig configures the InfluxDB outcome reporter. It is disabled
// when Address is empty.
type InfluxDBConfig struct {
	Address     string `mapstructure:"address"`
	Database    string `mapstructure:"database"`
	Measurement string `mapstructure:"measurement"`
}

// Enabled returns true if outcomes should be written to InfluxDB
func (c InfluxDBConfig) Enabled() bool {
	return c.Address != ""
}

// SetDefaults registers defaults for every key on v
func SetDefaults(v *viper.Viper) {
	retry := reconcile.DefaultRetryPolicy()

	v.SetDefault("defaultProvider", "")

	v.SetDefault("retry.baseDelay", retry.BaseDelay)
	v.SetDefault("retry.factor", retry.Factor)
	v.SetDefault("retry.jitter", retry.Jitter)
	v.SetDefault("retry.maxDelay", retry.MaxDelay)
	v.SetDefault("retry.maxAttempts", retry.MaxAttempts)

	v.SetDefault("callTimeout", defaultCallTimeout)
	v.SetDefault("workers", defaultWorkers)

	v.SetDefault("metrics.address", "")

	v.SetDefault("audit.influxdb.address", "")
	v.SetDefault("audit.influxdb.database", "")
	v.SetDefault("audit.influxdb.measurement", defaultInfluxDBMeasurement)
}

// BindEnv makes every key overridable by a FLEETSCALER_ environment
// variable. Nested keys use underscores.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the configuration from v into a Config and validates it
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding configuration")
	}

	if cfg.DefaultProvider == "" && len(cfg.Providers) == 1 {
		cfg.DefaultProvider = cfg.Providers[0].Name
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate returns an error naming the first invalid key
func (c *Config) Validate() error {
	names := make(map[string]bool, len(c.Providers))
	for i, p := range c.Providers {
		if p.Name == "" {
			return errors.Errorf("providers[%d].name must be provided", i)
		}

		if p.Type == "" {
			return errors.Errorf("providers[%d].type must be provided for provider %q", i, p.Name)
		}

		if names[p.Name] {
			return errors.Errorf("providers[%d].name %q is not unique", i, p.Name)
		}
		names[p.Name] = true
	}

	if c.DefaultProvider != "" && !names[c.DefaultProvider] {
		return errors.Errorf("defaultProvider %q does not name a configured provider", c.DefaultProvider)
	}

	if err := c.Retry.Validate(); err != nil {
		return errors.Wrap(err, "retry")
	}

	if c.CallTimeout <= 0 {
		return errors.Errorf("callTimeout must be positive, got %s", c.CallTimeout)
	}

	if c.Workers < 1 {
		return errors.Errorf("workers must be at least 1, got %d", c.Workers)
	}

	if c.Audit.InfluxDB.Enabled() && c.Audit.InfluxDB.Database == "" {
		return errors.New("audit.influxdb.database must be provided when audit.influxdb.address is set")
	}

	return nil
}

// EngineConfig returns the reconcile.Config described by c. The reporter
// is left for the caller to set.
func (c *Config) EngineConfig() reconcile.Config {
	return reconcile.Config{
		DefaultProvider: c.DefaultProvider,
		Retry:           c.Retry,
		CallTimeout:     c.CallTimeout,
		Workers:         c.Workers,
	}
}
