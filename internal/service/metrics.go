package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 历史账本运行指标，通过私有路由的 /metrics 暴露
var (
	historyActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "content_hub",
		Subsystem: "history",
		Name:      "actions_total",
		Help:      "Number of history records appended, by action.",
	}, []string{"action"})

	snapshotFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "content_hub",
		Subsystem: "history",
		Name:      "snapshot_fallbacks_total",
		Help:      "Number of diff rows downgraded to snapshot rows after a failed round-trip check.",
	})

	versionConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "content_hub",
		Subsystem: "history",
		Name:      "version_conflicts_total",
		Help:      "Number of writes that lost the version race and were retried.",
	})

	sweepDeletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "content_hub",
		Subsystem: "sweep",
		Name:      "deleted_rows_total",
		Help:      "Number of history rows removed by sweep tasks.",
	}, []string{"sweep"})
)
