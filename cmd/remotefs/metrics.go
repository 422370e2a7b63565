package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type proxyMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	reg      *prometheus.Registry
}

func newProxyMetrics() *proxyMetrics {
	m := &proxyMetrics{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remotefs_proxy_requests_total",
				Help: "Requests served by the read-only proxy",
			},
			[]string{"method", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "remotefs_proxy_request_duration_seconds",
				Help:    "Time taken to serve proxy requests, including the upstream fetch",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}

	m.reg.MustRegister(m.requests, m.duration)

	return m
}

func (m *proxyMetrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		timer := prometheus.NewTimer(m.duration.WithLabelValues(r.Method))

		next.ServeHTTP(ww, r)

		timer.ObserveDuration()
		m.requests.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
	})
}

// handler serves the collected metrics in the Prometheus exposition format
func (m *proxyMetrics) handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func newMetricsServer(addr string, m *proxyMetrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.handler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
