package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Mail outcomes.
const (
	OutcomeSent     = "sent"
	OutcomeFailed   = "failed"
	OutcomeDegraded = "degraded"
)

// PipelineMetrics records certificate rendering and outbound mail attempts.
type PipelineMetrics struct {
	render   *prometheus.HistogramVec
	mail     *prometheus.CounterVec
	mailTime *prometheus.HistogramVec
}

// NewPipelineMetrics registers the pipeline metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	render := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "certificate_render_seconds",
		Help:    "Duration of certificate PDF rendering in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})
	mail := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mail_attempts_total",
		Help: "Outbound mail attempts by message kind and outcome.",
	}, []string{"kind", "outcome"})
	mailTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mail_send_seconds",
		Help:    "Duration of transport send calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"transport"})
	reg.MustRegister(render, mail, mailTime)
	return &PipelineMetrics{render: render, mail: mail, mailTime: mailTime}
}

// ObserveRender records how long a certificate took to render.
func (p *PipelineMetrics) ObserveRender(duration time.Duration, err error) {
	if p == nil || p.render == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.render.WithLabelValues(result).Observe(duration.Seconds())
}

// IncMail increments the attempt counter for a kind/outcome pair.
func (p *PipelineMetrics) IncMail(kind, outcome string) {
	if p == nil || p.mail == nil {
		return
	}
	p.mail.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}

// ObserveSend records the duration of a transport call.
func (p *PipelineMetrics) ObserveSend(transport string, duration time.Duration) {
	if p == nil || p.mailTime == nil {
		return
	}
	p.mailTime.WithLabelValues(normalizeLabel(transport)).Observe(duration.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
