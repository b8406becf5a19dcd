package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("tiles.usecase")

var (
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tiles_puzzle_cache_lookups_total",
		Help: "Puzzle cache lookups by result (hit, miss, fault, corrupt)",
	}, []string{"result"})

	cacheFills = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tiles_puzzle_cache_fills_total",
		Help: "Cache write-backs after a store read, by outcome",
	}, []string{"outcome"})

	storeReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tiles_puzzle_store_reads_total",
		Help: "Puzzle store reads by result (found, absent, error)",
	}, []string{"result"})

	stableConfigLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tiles_stable_config_loads_total",
		Help: "Stable configuration computations by outcome",
	}, []string{"outcome"})
)
