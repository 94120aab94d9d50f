package metrics

import (
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPrometheusProvider_CounterReusedAndAccumulates(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusProvider(reg, "taskengine")

	c1 := p.Counter("tasks_enqueued")
	c2 := p.Counter("tasks_enqueued")
	if reflect.ValueOf(c1).Pointer() != reflect.ValueOf(c2).Pointer() {
		t.Fatalf("expected same counter instance for same name")
	}

	c1.Add(3)
	c2.Add(2)

	got := readMetric(t, reg, "taskengine_tasks_enqueued").GetCounter().GetValue()
	if got != 5 {
		t.Fatalf("counter value = %v; want 5", got)
	}
}

func TestPrometheusProvider_UpDownCounterMoves(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusProvider(reg, "taskengine")

	u := p.UpDownCounter("in_flight")
	u.Add(+3)
	u.Add(-1)

	got := readMetric(t, reg, "taskengine_in_flight").GetGauge().GetValue()
	if got != 2 {
		t.Fatalf("gauge value = %v; want 2", got)
	}
}

func TestPrometheusProvider_HistogramRecordsObservations(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusProvider(reg, "taskengine")

	h := p.Histogram("await_seconds")
	h.Record(0.1)
	h.Record(0.2)

	got := readMetric(t, reg, "taskengine_await_seconds").GetHistogram()
	if got.GetSampleCount() != 2 {
		t.Fatalf("sample count = %d; want 2", got.GetSampleCount())
	}
}

func TestPrometheusProvider_EmptyNamespaceLeavesNameUnprefixed(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusProvider(reg, "")
	p.Counter("raw_name")
	if got := readMetric(t, reg, "raw_name"); got == nil {
		t.Fatalf("expected metric registered under unprefixed name")
	}
}

func readMetric(t *testing.T, reg *prometheus.Registry, name string) *dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		metrics := fam.GetMetric()
		if len(metrics) == 0 {
			return nil
		}
		return metrics[0]
	}
	t.Fatalf("metric family %q not found", name)
	return nil
}
