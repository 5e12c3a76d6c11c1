package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query augmentation Prometheus metrics.
var (
	AugmentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "queryrules",
			Name:      "augment_total",
			Help:      "Augmentation passes by outcome",
		},
		[]string{"outcome"}, // "disabled" / "no_term" / "unchanged" / "augmented"
	)

	AugmentDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "queryrules",
			Name:      "augment_duration_seconds",
			Help:      "Augmentation pass duration in seconds, rule fetch included",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		},
	)

	RulesMatchedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "queryrules",
			Name:      "rules_matched_total",
			Help:      "Rules whose date window and triggers matched a search term",
		},
	)

	ActionsAppliedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "queryrules",
			Name:      "actions_applied_total",
			Help:      "Actions that contributed to an augmented document",
		},
		[]string{"kind", "path"}, // kind: boost/bury/hide; path: script/fallback/filter
	)

	ActionsSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "queryrules",
			Name:      "actions_skipped_total",
			Help:      "Actions skipped because they were incomplete or had no template",
		},
		[]string{"kind"},
	)

	RuleSourceErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "queryrules",
			Name:      "rule_source_errors_total",
			Help:      "Rule fetches that failed and were treated as no rules",
		},
	)

	RuleDecodeErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "queryrules",
			Name:      "rule_decode_errors_total",
			Help:      "Stored rule records skipped on the search path because they could not be decoded",
		},
	)

	RuleCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "queryrules",
			Name:      "rule_cache_total",
			Help:      "Rule cache hits and refreshes",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var ruleMetricsRegistered bool

// RegisterRuleMetrics registers the augmentation metrics. Must be called once from main.
func RegisterRuleMetrics() {
	if ruleMetricsRegistered {
		return
	}
	prometheus.MustRegister(AugmentTotal)
	prometheus.MustRegister(AugmentDuration)
	prometheus.MustRegister(RulesMatchedTotal)
	prometheus.MustRegister(ActionsAppliedTotal)
	prometheus.MustRegister(ActionsSkippedTotal)
	prometheus.MustRegister(RuleSourceErrorsTotal)
	prometheus.MustRegister(RuleDecodeErrorsTotal)
	prometheus.MustRegister(RuleCacheTotal)
	ruleMetricsRegistered = true
}
