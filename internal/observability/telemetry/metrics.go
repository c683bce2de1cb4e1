package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dialogue metrics
	SkillTurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "appinventor_skill_turns_total",
		Help: "Skill turns processed, by request type and outcome",
	}, []string{"request_type", "outcome"})

	SkillTurnLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "appinventor_skill_turn_latency_seconds",
		Help:    "Time spent handling one skill turn",
		Buckets: prometheus.DefBuckets,
	})

	SkillTurnErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "appinventor_skill_turn_errors_total",
		Help: "Turns answered with the generic error prompt",
	})

	// Reporting metrics
	ReportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "appinventor_reports_total",
		Help: "App reports submitted to the reporting endpoint, by status",
	}, []string{"status"})

	ReportLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "appinventor_report_latency_seconds",
		Help:    "Latency of the reporting endpoint call",
		Buckets: prometheus.DefBuckets,
	})
)
