package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheLookups tracks baseline lookups by result (hit, miss, expired).
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "price_history_lookups_total",
		Help: "Total number of price baseline lookups by result",
	}, []string{"result"})

	// cacheEvictions tracks entries removed by LRU pressure or expiry sweeps.
	cacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "price_history_evictions_total",
		Help: "Total number of price baselines evicted",
	})

	cacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "price_history_entries",
		Help: "Number of price baselines currently held",
	})
)
