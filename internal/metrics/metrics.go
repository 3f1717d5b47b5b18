// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PageServes counts page responses by route and cache state
// (hit, stale, miss, pending, error).
var PageServes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "spacetraveling_page_serves_total",
	Help: "Pages served, by route and generation cache state",
}, []string{"page", "state"})

// Regenerations counts page generations by trigger and outcome.
var Regenerations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "spacetraveling_page_generations_total",
	Help: "Page generations, by trigger (request, background, prime) and result",
}, []string{"trigger", "result"})

// GenerationDuration tracks how long page generation takes.
var GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "spacetraveling_page_generation_seconds",
	Help:    "Time spent generating a page, including content fetches",
	Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
})

// LoadMore counts load-more requests by result (ok, rejected, failed).
var LoadMore = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "spacetraveling_load_more_total",
	Help: "Load-more requests, by result",
}, []string{"result"})
