package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sitegrid"

// Prometheus implements every hook interface with metrics on a private
// registry.
type Prometheus struct {
	registry *prometheus.Registry

	calculations   *prometheus.CounterVec
	calcDuration   prometheus.Histogram
	siteRows       prometheus.Histogram
	renders        *prometheus.CounterVec
	renderBytes    prometheus.Histogram
	validationFail *prometheus.CounterVec
	cacheOps       *prometheus.CounterVec
	cacheBytes     *prometheus.CounterVec
	storeOps       *prometheus.CounterVec
	storeDuration  *prometheus.HistogramVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewPrometheus creates the collectors, including the Go runtime and
// process collectors.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		calculations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Layout calculations by cache outcome.",
		}, []string{"cached"}),
		calcDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calculation_duration_seconds",
			Help:      "Time spent producing a layout, including cache lookups.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		siteRows: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "site_rows",
			Help:      "Number of grid rows per calculated layout.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		renders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Rendered layouts by format.",
		}, []string{"format"}),
		renderBytes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_bytes",
			Help:      "Size of rendered output.",
			Buckets:   prometheus.ExponentialBuckets(512, 4, 8),
		}),
		validationFail: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Rejected input fields.",
		}, []string{"field"}),
		cacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes.",
		}, []string{"type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}, []string{"type"}),
		storeOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Session store calls.",
		}, []string{"driver", "op", "status"}),
		storeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Session store latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"driver", "op"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Served HTTP requests.",
		}, []string{"method", "route", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Install registers p for every hook category.
func (p *Prometheus) Install() {
	SetPipelineHooks(p)
	SetValidationHooks(p)
	SetCacheHooks(p)
	SetStoreHooks(p)
	SetHTTPHooks(p)
}

// Registry returns the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

func (p *Prometheus) OnCalculate(_ context.Context, _, rows int, cached bool, d time.Duration) {
	p.calculations.WithLabelValues(strconv.FormatBool(cached)).Inc()
	p.calcDuration.Observe(d.Seconds())
	p.siteRows.Observe(float64(rows))
}

func (p *Prometheus) OnRender(_ context.Context, format string, size int, _ time.Duration) {
	p.renders.WithLabelValues(format).Inc()
	p.renderBytes.Observe(float64(size))
}

func (p *Prometheus) OnValidationFailed(_ context.Context, fields []string) {
	for _, f := range fields {
		p.validationFail.WithLabelValues(f).Inc()
	}
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheOps.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnStoreOp(_ context.Context, driver, op string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.storeOps.WithLabelValues(driver, op, status).Inc()
	p.storeDuration.WithLabelValues(driver, op).Observe(d.Seconds())
}

func (p *Prometheus) OnRequest(_ context.Context, method, route string, status int, d time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks   = (*Prometheus)(nil)
	_ ValidationHooks = (*Prometheus)(nil)
	_ CacheHooks      = (*Prometheus)(nil)
	_ StoreHooks      = (*Prometheus)(nil)
	_ HTTPHooks       = (*Prometheus)(nil)
)
