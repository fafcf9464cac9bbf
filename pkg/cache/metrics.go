package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vcdinv_cache_lookups_total",
			Help: "Cache lookups by result",
		},
		[]string{"result"}, // hit, miss, expired, error
	)

	writesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vcdinv_cache_writes_total",
			Help: "Cache writes by status",
		},
		[]string{"status"}, // ok, error
	)
)
