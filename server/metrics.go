package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	feedLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusvoice_feed_loads_total",
		Help: "Feed load requests by outcome.",
	}, []string{"outcome"})

	votesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusvoice_votes_total",
		Help: "Vote mutations by outcome.",
	}, []string{"outcome"})

	issueDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campusvoice_issue_deletes_total",
		Help: "Issue deletions by outcome.",
	}, []string{"outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "campusvoice_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)
