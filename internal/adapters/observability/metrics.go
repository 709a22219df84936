package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "leadscout", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "leadscout", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "leadscout", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "leadscout", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "leadscout", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	LeadsCollected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "leadscout", Name: "leads_collected_total", Help: "Leads produced by a source before aggregation."},
		[]string{"store"},
	)
	SourceWarnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "leadscout", Name: "source_warnings_total", Help: "Recovered source failures."},
		[]string{"store", "stage"},
	)
	PipelineDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "leadscout", Name: "pipeline_dropped_total", Help: "Leads removed by the aggregation pipeline."},
		[]string{"reason"}, // reason: stale|duplicate
	)
	LeadsExported = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "leadscout", Name: "leads_exported", Help: "Leads in the last exported list."},
	)
	SinkResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "leadscout", Name: "sink_results_total", Help: "Sink outcomes."},
		[]string{"sink", "result"}, // result: ok|error
	)
)

var collectors = []prometheus.Collector{
	HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
	LeadsCollected, SourceWarnings, PipelineDropped, LeadsExported, SinkResults,
}

// Serve exposes reg on addr in the background. An empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors...)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Push sends the batch job's metrics to a Prometheus pushgateway.
func Push(url, job string, reg *prometheus.Registry) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(reg).Push(); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveSink(sink string, err error) {
	res := "ok"
	if err != nil {
		res = "error"
	}
	SinkResults.WithLabelValues(sink, res).Inc()
}
