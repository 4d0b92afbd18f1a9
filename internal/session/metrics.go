package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	answersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "brainbolt_answers_total",
		Help: "Accepted answer submissions by correctness.",
	}, []string{"result"})

	replaysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "brainbolt_submission_replays_total",
		Help: "Submissions served from the idempotency layer without re-scoring.",
	})

	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "brainbolt_cache_lookups_total",
		Help: "Cache lookups by key family and outcome.",
	}, []string{"family", "outcome"})
)

func observeCacheLookup(family string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	cacheLookupsTotal.WithLabelValues(family, outcome).Inc()
}
