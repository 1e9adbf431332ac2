package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPipelineMetricsExportsCountersAndHistograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPipelineMetrics(reg)

	m.ObserveRender(120*time.Millisecond, nil)
	m.ObserveRender(5*time.Millisecond, errors.New("boom"))
	m.IncMail("registration_status", OutcomeSent)
	m.IncMail("registration_status", OutcomeSent)
	m.IncMail("", OutcomeFailed)
	m.ObserveSend("smtp", 300*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "mail_attempts_total", map[string]string{"kind": "registration_status", "outcome": OutcomeSent}); err != nil {
		t.Fatalf("fetch sent: %v", err)
	} else if got != 2 {
		t.Fatalf("expected sent=2, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "mail_attempts_total", map[string]string{"kind": "unknown", "outcome": OutcomeFailed}); err != nil {
		t.Fatalf("fetch failed: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failed=1, got %f", got)
	}
	if got, err := fetchHistogramSum(mfs, "certificate_render_seconds", map[string]string{"result": "ok"}); err != nil {
		t.Fatalf("fetch render: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected render sum > 0, got %f", got)
	}
	if got, err := fetchHistogramSum(mfs, "mail_send_seconds", map[string]string{"transport": "smtp"}); err != nil {
		t.Fatalf("fetch send: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected send sum > 0, got %f", got)
	}
}

func TestNilPipelineMetricsIsNoop(t *testing.T) {
	var m *PipelineMetrics
	m.IncMail("x", OutcomeSent)
	m.ObserveRender(time.Second, nil)
	NewPipelineMetrics(nil).ObserveSend("log", time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
