package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg             *prom.Registry
	publishDuration *prom.HistogramVec
	publishResults  *prom.CounterVec
	notifications   *prom.CounterVec
	artifacts       prom.Histogram
}

// NewPrometheusRecorder constructs the metrics and registers them on reg,
// or on a fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		publishDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "hygieia",
			Name:      "publish_duration_seconds",
			Help:      "Duration of collector requests by payload kind",
			Buckets:   prom.DefBuckets,
		}, []string{"kind"}),
		publishResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "hygieia",
			Name:      "publish_results_total",
			Help:      "Collector request outcomes by payload kind",
		}, []string{"kind", "result"}),
		notifications: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "hygieia",
			Name:      "notifications_total",
			Help:      "Lifecycle notifications by phase and build status",
		}, []string{"phase", "status"}),
		artifacts: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "hygieia",
			Name:      "artifacts_resolved",
			Help:      "Number of distinct artifacts resolved per completed build",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
	}
	reg.MustRegister(pr.publishDuration, pr.publishResults, pr.notifications, pr.artifacts)
	return pr
}

func (p *PrometheusRecorder) ObservePublishDuration(kind string, d time.Duration) {
	if p == nil {
		return
	}
	p.publishDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPublishResult(kind string, result ResultLabel) {
	if p == nil {
		return
	}
	p.publishResults.WithLabelValues(kind, string(result)).Inc()
}

func (p *PrometheusRecorder) IncNotification(phase, status string) {
	if p == nil {
		return
	}
	p.notifications.WithLabelValues(phase, status).Inc()
}

func (p *PrometheusRecorder) ObserveArtifactsResolved(n int) {
	if p == nil {
		return
	}
	p.artifacts.Observe(float64(n))
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.reg
}

// HTTPHandler returns an http.Handler that serves the recorder's metrics.
func (p *PrometheusRecorder) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// WriteTextfile writes the current metrics in the node exporter textfile
// format. One-shot CLI runs use it instead of serving /metrics.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.reg)
}
