package grid

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricHeightCommits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vgrid",
		Name:      "row_height_commits_total",
		Help:      "Number of non-empty row height batches committed.",
	})
	metricRelayouts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vgrid",
		Name:      "row_layout_invalidations_total",
		Help:      "Number of times cached row offsets were invalidated.",
	})
	metricEndReached = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vgrid",
		Name:      "end_reached_total",
		Help:      "Number of near-end signals fired.",
	})
	metricResizeEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vgrid",
		Name:      "column_resize_events_total",
		Help:      "Number of column widths applied during interactive resizes.",
	})
	metricColumnBuilds = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vgrid",
		Name:      "column_layout_builds_total",
		Help:      "Number of column layouts computed (memo misses).",
	})
)
