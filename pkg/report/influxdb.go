package report

import (
	"time"

	"github.com/pkg/errors"

	influxdbclient "github.com/influxdata/influxdb/client/v2"

	"github.com/containership/cluster-manager/pkg/log"

	"github.com/containership/fleetscaler/pkg/reconcile"
)

const (
	defaultMeasurement   = "reconciliations"
	influxRequestTimeout = 10 * time.Second
)

type pointWriter interface {
	Write(bp influxdbclient.BatchPoints) error
}

// InfluxDB writes an audit point for every outcome. Write failures are
// logged and never affect reconciliation.
type InfluxDB struct {
	client      pointWriter
	database    string
	measurement string

	nowFunc func() time.Time
}

// NewInfluxDB returns an audit reporter writing to the InfluxDB at address
func NewInfluxDB(address, database, measurement string) (*InfluxDB, error) {
	if address == "" {
		// As explicitly stated in the InfluxDB client,
		// Addr should be of the form "http://host:<port>"
		return nil, errors.New("address must not be empty")
	}

	if database == "" {
		return nil, errors.New("database must not be empty")
	}

	client, err := influxdbclient.NewHTTPClient(influxdbclient.HTTPConfig{
		Addr:    address,
		Timeout: influxRequestTimeout,
	})
	if err != nil {
		return nil, errors.Wrap(err, "instantiating influxdb client")
	}

	return newInfluxDB(client, database, measurement), nil
}

func newInfluxDB(client pointWriter, database, measurement string) *InfluxDB {
	if measurement == "" {
		measurement = defaultMeasurement
	}

	return &InfluxDB{
		client:      client,
		database:    database,
		measurement: measurement,
		nowFunc:     time.Now,
	}
}

// Report implements reconcile.Reporter
func (r *InfluxDB) Report(o reconcile.Outcome) {
	if err := r.write(o); err != nil {
		log.Errorf("Writing audit point for fleet %s: %s", o.Fleet, err)
	}
}

func (r *InfluxDB) write(o reconcile.Outcome) error {
	bp, err := influxdbclient.NewBatchPoints(influxdbclient.BatchPointsConfig{
		Database:  r.database,
		Precision: "s",
	})
	if err != nil {
		return errors.Wrap(err, "creating batch points")
	}

	p, err := influxdbclient.NewPoint(r.measurement, outcomeTags(o), outcomeFields(o), r.nowFunc())
	if err != nil {
		return errors.Wrap(err, "creating point")
	}
	bp.AddPoint(p)

	return r.client.Write(bp)
}

func outcomeTags(o reconcile.Outcome) map[string]string {
	tags := map[string]string{
		"fleet":    o.Fleet,
		"provider": o.Provider,
		"outcome":  o.Kind.String(),
		"reason":   o.Event(),
	}

	if o.Group != "" {
		tags["group"] = o.Group
	}

	return tags
}

func outcomeFields(o reconcile.Outcome) map[string]interface{} {
	fields := map[string]interface{}{
		"previous":  o.Previous,
		"attempted": o.Attempted,
		"attempts":  o.Attempts,
		"message":   o.Reason,
	}

	if o.Source != "" {
		fields["source"] = o.Source
	}

	return fields
}
