package app

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/containership/cluster-manager/pkg/log"

	"github.com/containership/fleetscaler/pkg/buildinfo"
	"github.com/containership/fleetscaler/pkg/config"
	"github.com/containership/fleetscaler/pkg/provider"
	"github.com/containership/fleetscaler/pkg/reconcile"
	"github.com/containership/fleetscaler/pkg/report"
)

const metricsShutdownTimeout = 5 * time.Second

// application holds everything a command needs to talk to providers
type application struct {
	config   *config.Config
	gateways provider.RegistryInterface
	engine   *reconcile.Engine

	metricsServer *http.Server
}

// newApplication loads the configuration and wires up the gateways, the
// reporters and the engine
func newApplication() (*application, error) {
	log.Infof("Version: %s", buildinfo.String())

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, errors.Wrap(err, "loading configuration")
	}

	if len(cfg.Providers) == 0 {
		return nil, errors.New("no providers configured")
	}

	metricsRegistry := prometheus.NewRegistry()

	callMetrics, err := provider.NewCallMetrics(metricsRegistry)
	if err != nil {
		return nil, errors.Wrap(err, "registering provider metrics")
	}

	gateways := provider.Registry()
	if err := registerGateways(cfg.Providers, gateways, callMetrics); err != nil {
		return nil, err
	}

	reporter, err := newReporter(cfg, metricsRegistry)
	if err != nil {
		return nil, err
	}

	engineConfig := cfg.EngineConfig()
	engineConfig.Reporter = reporter

	engine, err := reconcile.NewEngine(gateways, engineConfig)
	if err != nil {
		return nil, errors.Wrap(err, "creating reconciliation engine")
	}

	a := &application{
		config:   cfg,
		gateways: gateways,
		engine:   engine,
	}

	if cfg.Metrics.Address != "" {
		a.serveMetrics(metricsRegistry)
	}

	return a, nil
}

func newReporter(cfg *config.Config, registerer prometheus.Registerer) (reconcile.Reporter, error) {
	prom, err := report.NewPrometheus(registerer)
	if err != nil {
		return nil, errors.Wrap(err, "registering outcome metrics")
	}

	reporters := report.Multi{prom}

	if influx := cfg.Audit.InfluxDB; influx.Enabled() {
		r, err := report.NewInfluxDB(influx.Address, influx.Database, influx.Measurement)
		if err != nil {
			return nil, errors.Wrap(err, "creating InfluxDB reporter")
		}

		reporters = append(reporters, r)
		log.Infof("Recording outcomes to InfluxDB database %q at %s", influx.Database, influx.Address)
	}

	return reporters, nil
}

func (a *application) serveMetrics(gatherer prometheus.Gatherer) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	a.metricsServer = &http.Server{
		Addr:    a.config.Metrics.Address,
		Handler: mux,
	}

	go func() {
		log.Infof("Serving metrics on %s", a.config.Metrics.Address)
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("Metrics listener failed: %s", err)
		}
	}()
}

// gateway returns the named gateway, or the default one for an empty name
func (a *application) gateway(name string) (provider.Gateway, error) {
	if name == "" {
		name = a.config.DefaultProvider
	}

	if name == "" {
		return nil, errors.New("no provider given and no default provider configured")
	}

	return a.gateways.Get(name)
}

func (a *application) close() {
	if a.metricsServer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
	defer cancel()

	if err := a.metricsServer.Shutdown(ctx); err != nil {
		log.Errorf("Shutting down metrics listener: %s", err)
	}
}
