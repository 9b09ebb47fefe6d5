package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcomes.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)

// ServerMetrics owns a private registry with the Go and process collectors,
// HTTP request metrics and engine counters. Labels are limited to method,
// registered route and status so unknown paths cannot explode cardinality.
type ServerMetrics struct {
	reg             *prometheus.Registry
	handler         http.Handler
	inflight        prometheus.Gauge
	reqTotal        *prometheus.CounterVec
	reqDur          *prometheus.HistogramVec
	respBytes       *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	panicTotal      prometheus.Counter
	csrfFailures    prometheus.Counter
	loginTotal      *prometheus.CounterVec
	sessionsCreated prometheus.Counter
	buildInfo       *prometheus.GaugeVec
}

// New returns a fresh registry with all collectors registered.
func New() *ServerMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &ServerMetrics{
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Current number of in-flight HTTP requests",
		}),
		reqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, route, and status",
		}, []string{"method", "route", "status"}),
		reqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency by method and route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		respBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "Response size by method and route",
			Buckets: []float64{256, 1024, 4096, 16384, 65536, 262144, 1048576},
		}, []string{"method", "route"}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total 5xx responses by method and route",
		}, []string{"method", "route"}),
		panicTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_panic_total",
			Help: "Total number of recovered handler panics",
		}),
		csrfFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "csrf_validation_failures_total",
			Help: "Total submissions rejected by CSRF validation",
		}),
		loginTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sessions_created_total",
			Help: "Total sessions started",
		}),
		buildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Build metadata (value is always 1)",
		}, []string{"app", "version", "go_version"}),
	}
	reg.MustRegister(
		m.inflight,
		m.reqTotal,
		m.reqDur,
		m.respBytes,
		m.errorsTotal,
		m.panicTotal,
		m.csrfFailures,
		m.loginTotal,
		m.sessionsCreated,
		m.buildInfo,
	)

	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	m.reg = reg
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *ServerMetrics) Handler() http.Handler {
	return m.handler
}

// Registry exposes the underlying registry.
func (m *ServerMetrics) Registry() *prometheus.Registry {
	return m.reg
}

// SetBuildInfo is called once at startup.
func (m *ServerMetrics) SetBuildInfo(app, version, goVersion string) {
	m.buildInfo.WithLabelValues(app, version, goVersion).Set(1)
}

func (m *ServerMetrics) IncPanic() {
	m.panicTotal.Inc()
}

func (m *ServerMetrics) IncCSRFFailure() {
	m.csrfFailures.Inc()
}

// IncLogin counts a login attempt; result is LoginSuccess or LoginFailure.
func (m *ServerMetrics) IncLogin(result string) {
	m.loginTotal.WithLabelValues(result).Inc()
}

func (m *ServerMetrics) IncSessionCreated() {
	m.sessionsCreated.Inc()
}
