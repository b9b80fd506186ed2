package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "advert"

type HandlerMetrics struct {
	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	gatherer        prometheus.Gatherer
}

type ServiceMetrics struct {
	MethodCount    *prometheus.CounterVec
	MethodDuration *prometheus.HistogramVec
}

type RepositoryMetrics struct {
	QueryCount    *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
}

// Registry bundles a registerer with the gatherer that exposes it.
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

func NewHandlerMetrics(reg Registry) *HandlerMetrics {
	factory := promauto.With(reg)

	return &HandlerMetrics{
		RequestCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "handler_requests_total",
				Help:      "Total number of HTTP requests handled by the handler layer.",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "handler_request_duration_seconds",
				Help:      "Histogram of response latency for handler in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status"},
		),
		gatherer: reg,
	}
}

func NewServiceMetrics(reg prometheus.Registerer) *ServiceMetrics {
	factory := promauto.With(reg)

	return &ServiceMetrics{
		MethodCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "service_methods_total",
				Help:      "Total number of service methods executed.",
			},
			[]string{"method", "status"},
		),
		MethodDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "service_method_duration_seconds",
				Help:      "Histogram of service method execution duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "status"},
		),
	}
}

func NewRepositoryMetrics(reg prometheus.Registerer) *RepositoryMetrics {
	factory := promauto.With(reg)

	return &RepositoryMetrics{
		QueryCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "repository_queries_total",
				Help:      "Total number of database queries executed.",
			},
			[]string{"query", "status"},
		),
		QueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "repository_query_duration_seconds",
				Help:      "Histogram of database query execution duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"query", "status"},
		),
	}
}

func (hm *HandlerMetrics) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(hm.gatherer, promhttp.HandlerOpts{})
}
