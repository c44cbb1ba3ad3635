package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	DocumentsParsed  prometheus.Counter
	RecordsFlattened prometheus.Counter
	RankQueries      prometheus.Counter
	RankDuration     prometheus.Histogram
	ErrorsCount      *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		DocumentsParsed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_parsed_total",
			Help:      "The total number of fare-search documents parsed",
		}),
		RecordsFlattened: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_flattened_total",
			Help:      "The total number of flat flight records produced",
		}),
		RankQueries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rank_queries_total",
			Help:      "The total number of rank queries served",
		}),
		RankDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rank_query_duration_seconds",
			Help:      "Time taken to answer a rank query",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
