// Package metrics holds the Prometheus collectors of the proxy.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every docsproxy collector plus the Go and process
// collectors.
var Registry = prometheus.NewRegistry()

var (
	docsResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsproxy_resolutions_total",
			Help: "Number of documentation requests by module and outcome.",
		},
		[]string{"module", "outcome"},
	)
	docsAdmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsproxy_admissions_total",
			Help: "Number of admission requests by outcome.",
		},
		[]string{"outcome"},
	)
	docsRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsproxy_refresh_total",
			Help: "Number of version list refreshes by module and result.",
		},
		[]string{"module", "result"},
	)
	docsModuleVersions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "docsproxy_module_versions",
			Help: "Number of versions currently known per module.",
		},
		[]string{"module"},
	)
	docsUpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docsproxy_upstream_duration_seconds",
			Help:    "Time taken to get the upstream response headers.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"category"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		docsResolutionsTotal,
		docsAdmissionsTotal,
		docsRefreshTotal,
		docsModuleVersions,
		docsUpstreamDuration,
	)
}

// Resolution outcomes.
const (
	OutcomeProxied  = "proxied"
	OutcomeNotFound = "not_found"
	OutcomeNoKDoc   = "kdoc_unavailable"
	OutcomeError    = "error"
)

// ObserveResolution counts a documentation request.
func ObserveResolution(module, outcome string) {
	docsResolutionsTotal.WithLabelValues(module, outcome).Inc()
}

// ObserveAdmission counts an admission request.
func ObserveAdmission(outcome string) {
	docsAdmissionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveRefresh counts a refresh of module and records its version count.
// versions is ignored when err is not nil.
func ObserveRefresh(module string, versions int, err error) {
	if err != nil {
		docsRefreshTotal.WithLabelValues(module, "error").Inc()
		return
	}
	docsRefreshTotal.WithLabelValues(module, "ok").Inc()
	SetModuleVersions(module, versions)
}

// SetModuleVersions records the number of versions of module.
func SetModuleVersions(module string, n int) {
	docsModuleVersions.WithLabelValues(module).Set(float64(n))
}

// ObserveUpstream records the latency of an upstream fetch.
func ObserveUpstream(category string, d time.Duration) {
	docsUpstreamDuration.WithLabelValues(category).Observe(d.Seconds())
}

// Handler serves Registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
