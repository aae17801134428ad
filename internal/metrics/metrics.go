// Package metrics provides Prometheus metrics for the catalog service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LinkSyncs tracks bulk link reconciliations by relation, mode and outcome
	LinkSyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog",
			Subsystem: "links",
			Name:      "sync_total",
			Help:      "Total number of bulk link reconciliations by outcome",
		},
		[]string{"relation", "mode", "outcome"},
	)

	// LinksAdded tracks links written by the relationship service
	LinksAdded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog",
			Subsystem: "links",
			Name:      "added_total",
			Help:      "Total number of links created",
		},
		[]string{"relation"},
	)

	// LinksRemoved tracks links deleted by the relationship service
	LinksRemoved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog",
			Subsystem: "links",
			Name:      "removed_total",
			Help:      "Total number of links removed",
		},
		[]string{"relation"},
	)

	// HTTPRequests tracks inbound HTTP requests
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "catalog",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of inbound HTTP requests",
		},
		[]string{"method", "status"},
	)
)
