package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	PaymentsTotal          *prometheus.CounterVec
	ClassificationsTotal   *prometheus.CounterVec
	ClassificationRuns     *prometheus.CounterVec
	ClassificationDuration prometheus.Histogram
	CriteriaCacheLookups   *prometheus.CounterVec
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wellness_center_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		PaymentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wellness_center_payments_total",
				Help: "Total number of payment and refund attempts by outcome.",
			},
			[]string{"kind", "status"},
		),
		ClassificationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wellness_center_classifications_total",
				Help: "Customers classified, by resulting membership level and whether any label changed.",
			},
			[]string{"membership_level", "changed"},
		),
		ClassificationRuns: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wellness_center_classification_runs_total",
				Help: "Batch classification runs by outcome.",
			},
			[]string{"status"},
		),
		ClassificationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wellness_center_classification_run_duration_seconds",
				Help:    "Duration of batch classification runs.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
			},
		),
		CriteriaCacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wellness_center_criteria_cache_lookups_total",
				Help: "Membership criteria cache lookups by result.",
			},
			[]string{"result"},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordPayment(kind, status string) {
	Business.PaymentsTotal.WithLabelValues(kind, status).Inc()
}

func RecordClassification(level string, changed bool) {
	label := "false"
	if changed {
		label = "true"
	}
	Business.ClassificationsTotal.WithLabelValues(level, label).Inc()
}

func RecordClassificationRun(status string, duration time.Duration) {
	Business.ClassificationRuns.WithLabelValues(status).Inc()
	Business.ClassificationDuration.Observe(duration.Seconds())
}

func RecordCriteriaCacheLookup(result string) {
	Business.CriteriaCacheLookups.WithLabelValues(result).Inc()
}
