package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/temcen/wardrobe/internal/engine"
)

// MetricsCollector exposes suggestion and feedback metrics. A nil collector
// records nothing.
type MetricsCollector struct {
	suggestionRequests prometheus.Counter
	suggestionLatency  prometheus.Histogram
	candidates         *prometheus.GaugeVec
	flagsTotal         prometheus.Counter
	outfitActions      *prometheus.CounterVec
}

func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	factory := promauto.With(reg)

	return &MetricsCollector{
		suggestionRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "wardrobe_suggestion_requests_total",
			Help: "Total number of outfit suggestion requests",
		}),

		suggestionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "wardrobe_suggestion_latency_seconds",
			Help:    "Outfit suggestion latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),

		candidates: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wardrobe_suggestion_candidates",
			Help: "Candidates seen by the last suggestion run, by stage",
		}, []string{"stage"}),

		flagsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "wardrobe_flagged_patterns_total",
			Help: "Total number of outfit patterns flagged",
		}),

		outfitActions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "wardrobe_outfit_actions_total",
			Help: "Outfit lifecycle actions by type",
		}, []string{"action"}),
	}
}

func (mc *MetricsCollector) RecordSuggestion(duration time.Duration, stats engine.SuggestStats) {
	if mc == nil {
		return
	}
	mc.suggestionRequests.Inc()
	mc.suggestionLatency.Observe(duration.Seconds())
	mc.candidates.WithLabelValues("generated").Set(float64(stats.Generated))
	mc.candidates.WithLabelValues("excluded").Set(float64(stats.Excluded))
	mc.candidates.WithLabelValues("returned").Set(float64(stats.Returned))
}

func (mc *MetricsCollector) RecordFlag() {
	if mc == nil {
		return
	}
	mc.flagsTotal.Inc()
}

func (mc *MetricsCollector) RecordOutfitAction(action string) {
	if mc == nil {
		return
	}
	mc.outfitActions.WithLabelValues(action).Inc()
}
