package storage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var snapshotBytes = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "rosarium_snapshot_bytes",
	Help: "Size of the last snapshot written, by storage driver",
}, []string{"driver"})

// Driver names.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)
