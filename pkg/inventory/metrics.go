package inventory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	assembleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vcdinv_inventory_assemble_duration_seconds",
			Help:    "Time taken to assemble an inventory from host records",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	assembleHostsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vcdinv_inventory_hosts_total",
			Help: "Host records processed by the assembler",
		},
		[]string{"outcome"}, // included, filtered, skipped
	)

	assembleGroups = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vcdinv_inventory_groups",
			Help: "Number of derived groups in the last assembled inventory",
		},
	)
)
