package aws

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

const (
	// ConfigKeyRegion is the configuration key used to override the AWS region
	ConfigKeyRegion = "region"
	// ConfigKeyMaxRecords is the configuration key used to set the page size
	// for describing autoscaling groups
	ConfigKeyMaxRecords = "maxRecords"
)

const (
	// AWS rejects pages larger than this
	maxRecordsLimit   = 100
	defaultMaxRecords = 100
)

type cloudConfig struct {
	// Region overrides AWS_REGION and the EC2 metadata service
	Region string `json:"region"`
	// MaxRecords is the page size used when describing groups
	MaxRecords string `json:"maxRecords"`

	maxRecords int64
}

// defaults and validates the cloudConfig. Intended to be called with an
// empty struct that we'll fill in here using the caller-provided configuration.
func (c *cloudConfig) defaultAndValidate(configuration map[string]string) error {
	// Round trip the config through JSON parser to populate our struct
	j, _ := json.Marshal(configuration)
	json.Unmarshal(j, c)

	if c.MaxRecords == "" {
		c.maxRecords = defaultMaxRecords
		return nil
	}

	n, err := strconv.ParseInt(c.MaxRecords, 10, 64)
	if err != nil {
		return errors.Wrapf(err, "parsing maxRecords %q", c.MaxRecords)
	}

	if n < 1 || n > maxRecordsLimit {
		return errors.Errorf("maxRecords must be between 1 and %d, got %d", maxRecordsLimit, n)
	}

	c.maxRecords = n
	return nil
}
