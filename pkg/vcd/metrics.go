package vcd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vcdinv_vcd_request_duration_seconds",
			Help:    "Duration of vCloud Director API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vcdinv_vcd_requests_total",
			Help: "vCloud Director API requests by endpoint and HTTP status",
		},
		[]string{"endpoint", "status"},
	)

	vmsFetched = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vcdinv_vcd_vms",
			Help: "Number of VMs returned by the last fetch",
		},
	)
)
