package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ========================================
// Prometheus 메트릭
// ========================================

var (
	// fieldTicksTotal counts processed update ticks
	fieldTicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fieldnav_ticks_total",
		Help: "Total field map update ticks",
	})

	// fieldTickDuration tracks update tick latency
	fieldTickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fieldnav_tick_duration_seconds",
		Help:    "Field map update duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12), // 50us to ~100ms
	})

	// recognitionEventsTotal counts reconciliation outcomes by action
	recognitionEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldnav_recognition_events_total",
		Help: "Recognition reconciliation events by action",
	}, []string{"action"})

	// mappedRecognitions tracks the current number of mapped recognitions
	mappedRecognitions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fieldnav_mapped_recognitions",
		Help: "Number of recognitions currently mapped onto the grid",
	})

	// planTotal counts planning calls by planner and result
	planTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldnav_plan_total",
		Help: "Planning calls by planner and result",
	}, []string{"planner", "result"})

	// planDuration tracks planning latency
	planDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fieldnav_plan_duration_seconds",
		Help:    "Planning duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14),
	}, []string{"planner"})

	// dliteRecomputesTotal counts D* Lite shortest-path recomputations
	dliteRecomputesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fieldnav_dlite_recomputes_total",
		Help: "D* Lite computeShortestPath invocations",
	})
)

func planResultLabel(found bool) string {
	if found {
		return "found"
	}
	return "no_path"
}
