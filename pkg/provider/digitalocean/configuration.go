package digitalocean

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

const (
	// ConfigKeyClusterID is the configuration key that is used for getting the cluster ID
	ConfigKeyClusterID = "clusterID"
	// ConfigKeyTokenEnvVarName is the name of the configuration key that is env var
	// which is used to get the DigitalOcean API key
	ConfigKeyTokenEnvVarName = "tokenEnvVarName"
	// ConfigKeyMinNodes is the configuration key for the lower bound of node
	// pools that don't have auto-scale enabled
	ConfigKeyMinNodes = "minNodes"
	// ConfigKeyMaxNodes is the configuration key for the upper bound of node
	// pools that don't have auto-scale enabled
	ConfigKeyMaxNodes = "maxNodes"
	// ConfigKeyPerPage is the configuration key for the node pool page size
	ConfigKeyPerPage = "perPage"
)

const (
	defaultMinNodes = 1
	defaultMaxNodes = 25
	defaultPerPage  = 50
	// DigitalOcean rejects pages larger than this
	maxPerPage = 200
)

type cloudConfig struct {
	TokenEnvVarName string
	ClusterID       string

	MinNodes string
	MaxNodes string
	PerPage  string

	minNodes int
	maxNodes int
	perPage  int
}

func (c *cloudConfig) defaultAndValidate(configuration map[string]string) error {
	// Round trip the config through JSON parser to populate our struct
	j, _ := json.Marshal(configuration)
	json.Unmarshal(j, c)

	if c.ClusterID == "" {
		return errors.Errorf("clusterID must be provided")
	}

	if c.TokenEnvVarName == "" || os.Getenv(c.TokenEnvVarName) == "" {
		return errors.New("tokenEnvVarName must be provided, and reference a valid env var")
	}

	var err error
	if c.minNodes, err = intOrDefault(ConfigKeyMinNodes, c.MinNodes, defaultMinNodes); err != nil {
		return err
	}

	if c.maxNodes, err = intOrDefault(ConfigKeyMaxNodes, c.MaxNodes, defaultMaxNodes); err != nil {
		return err
	}

	if c.perPage, err = intOrDefault(ConfigKeyPerPage, c.PerPage, defaultPerPage); err != nil {
		return err
	}

	if c.minNodes < 0 || c.maxNodes < c.minNodes {
		return errors.Errorf("minNodes %d and maxNodes %d must satisfy 0 <= minNodes <= maxNodes", c.minNodes, c.maxNodes)
	}

	if c.perPage < 1 || c.perPage > maxPerPage {
		return errors.Errorf("perPage must be between 1 and %d, got %d", maxPerPage, c.perPage)
	}

	return nil
}

func intOrDefault(key, value string, def int) (int, error) {
	if value == "" {
		return def, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %s %q", key, value)
	}

	return n, nil
}
