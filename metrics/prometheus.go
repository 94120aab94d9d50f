package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusProvider is a Provider backed by real client_golang instruments,
// registered against a caller-supplied *prometheus.Registry so an embedding
// application can expose them over its own /metrics handler.
//
// Grounded on everyday-items-toolkit's infra/queue/asynq/metrics.go, which
// wires the same library (promauto.NewGaugeVec/NewCounterVec/
// NewHistogramVec) to instrument a task-processing system's queue depth,
// in-flight count, and per-task duration — the same three instrument shapes
// this engine's scheduler emits (see DESIGN.md "metrics subpackage").
//
// Unlike asynq's per-queue-name label vectors, this engine has a single
// work queue and a single notification map per Engine instance, so plain
// (unlabeled) Gauge/Counter/Histogram collectors are used rather than Vecs.
type PrometheusProvider struct {
	reg       prometheus.Registerer
	namespace string
	factory   promauto.Factory

	mu         sync.RWMutex
	counters   map[string]*prometheusCounter
	updowns    map[string]*prometheusUpDownCounter
	histograms map[string]*prometheusHistogram
}

// NewPrometheusProvider builds a Provider that registers instruments against
// reg (pass prometheus.DefaultRegisterer to use the global registry). Every
// instrument name is prefixed with namespace + "_" (empty namespace is
// allowed).
func NewPrometheusProvider(reg prometheus.Registerer, namespace string) *PrometheusProvider {
	return &PrometheusProvider{
		reg:        reg,
		namespace:  namespace,
		factory:    promauto.With(reg),
		counters:   make(map[string]*prometheusCounter),
		updowns:    make(map[string]*prometheusUpDownCounter),
		histograms: make(map[string]*prometheusHistogram),
	}
}

func (p *PrometheusProvider) name(n string) string {
	if p.namespace == "" {
		return n
	}
	return p.namespace + "_" + n
}

func (p *PrometheusProvider) Counter(name string, opts ...InstrumentOption) Counter {
	p.mu.RLock()
	c, ok := p.counters[name]
	p.mu.RUnlock()
	if ok {
		return c
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok = p.counters[name]; ok {
		return c
	}
	cfg := resolveConfig(opts)
	c = &prometheusCounter{
		c: p.factory.NewCounter(prometheus.CounterOpts{
			Name: p.name(name),
			Help: helpOrDefault(cfg.Description, name),
		}),
	}
	p.counters[name] = c
	return c
}

func (p *PrometheusProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	p.mu.RLock()
	u, ok := p.updowns[name]
	p.mu.RUnlock()
	if ok {
		return u
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if u, ok = p.updowns[name]; ok {
		return u
	}
	cfg := resolveConfig(opts)
	u = &prometheusUpDownCounter{
		g: p.factory.NewGauge(prometheus.GaugeOpts{
			Name: p.name(name),
			Help: helpOrDefault(cfg.Description, name),
		}),
	}
	p.updowns[name] = u
	return u
}

func (p *PrometheusProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	p.mu.RLock()
	h, ok := p.histograms[name]
	p.mu.RUnlock()
	if ok {
		return h
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok = p.histograms[name]; ok {
		return h
	}
	cfg := resolveConfig(opts)
	h = &prometheusHistogram{
		h: p.factory.NewHistogram(prometheus.HistogramOpts{
			Name:    p.name(name),
			Help:    helpOrDefault(cfg.Description, name),
			Buckets: prometheus.DefBuckets,
		}),
	}
	p.histograms[name] = h
	return h
}

func helpOrDefault(desc, name string) string {
	if desc != "" {
		return desc
	}
	return name
}

type prometheusCounter struct{ c prometheus.Counter }

func (c *prometheusCounter) Add(n int64) { c.c.Add(float64(n)) }

type prometheusUpDownCounter struct{ g prometheus.Gauge }

func (u *prometheusUpDownCounter) Add(n int64) { u.g.Add(float64(n)) }

type prometheusHistogram struct{ h prometheus.Histogram }

func (h *prometheusHistogram) Record(v float64) { h.h.Observe(v) }
