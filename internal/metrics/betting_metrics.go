// Package metrics defines slip-building and bet-structure metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Slip counter vectors
var (
	SlipsBuiltTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "quiniela",
		Name:      "slips_built_total",
		Help:      "Total number of slips assembled",
	})

	BetStructuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quiniela",
		Name:      "bet_structures_total",
		Help:      "Bet structures produced, by strategy",
	}, []string{"strategy"})
)
