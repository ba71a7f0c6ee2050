package app

import (
	"github.com/pkg/errors"

	"github.com/containership/cluster-manager/pkg/log"

	"github.com/containership/fleetscaler/pkg/config"
	"github.com/containership/fleetscaler/pkg/provider"
	"github.com/containership/fleetscaler/pkg/provider/aws"
	"github.com/containership/fleetscaler/pkg/provider/digitalocean"
)

const (
	providerTypeAWS          = "aws"
	providerTypeDigitalOcean = "digitalocean"
)

// registerGateways instantiates every configured provider, wraps it for
// metrics and puts it into the registry
func registerGateways(providers []config.ProviderConfig, registry provider.RegistryInterface, metrics *provider.CallMetrics) error {
	for _, p := range providers {
		gw, err := instantiateGateway(p)
		if err != nil {
			return err
		}

		if metrics != nil {
			gw = provider.NewInstrumented(gw, metrics)
		}

		registry.Put(p.Name, gw)
		log.Infof("Registered %s provider %q", p.Type, p.Name)
	}

	return nil
}

func instantiateGateway(p config.ProviderConfig) (provider.Gateway, error) {
	switch p.Type {
	case providerTypeAWS:
		// We're explicitly not copying the name and configuration here since
		// it is assumed that NewClient will not modify the parameters
		gw, err := aws.NewClient(p.Name, p.Configuration)
		if err != nil {
			return nil, errors.Wrapf(err, "constructing new aws provider %q", p.Name)
		}

		return gw, nil

	case providerTypeDigitalOcean:
		gw, err := digitalocean.NewClient(p.Name, p.Configuration)
		if err != nil {
			return nil, errors.Wrapf(err, "constructing new digitalocean provider %q", p.Name)
		}

		return gw, nil

	default:
		return nil, errors.Errorf("unknown provider type %q", p.Type)
	}
}
