// Package metrics defines the instrument surface the scheduler emits
// through: a queue-depth gauge, an in-flight gauge, and an await-duration
// histogram (see scheduler.go). The surface is deliberately small so a
// caller can swap NoopProvider, MemoryProvider, or PrometheusProvider
// without the scheduler knowing which backend it's talking to.
package metrics

// Provider constructs the instruments a scheduler records through. A
// Provider implementation owns instrument identity: two calls with the same
// name must return the same instrument, so repeated per-task emission
// (every launch, every notify, every park) doesn't allocate.
//
// Implementations must be safe for concurrent use — the scheduler calls
// Counter/UpDownCounter/Histogram from worker goroutines without additional
// synchronization of its own.
type Provider interface {
	Counter(name string, opts ...InstrumentOption) Counter
	UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter
	Histogram(name string, opts ...InstrumentOption) Histogram
}

// Counter records a monotonic count (e.g. tasks launched).
type Counter interface {
	Add(n int64)
}

// UpDownCounter records a value that moves both directions, such as the
// scheduler's queue-depth and in-flight gauges.
type UpDownCounter interface {
	Add(n int64)
}

// Histogram records a distribution of float64 measurements. The scheduler
// uses it for one thing: seconds spent parked on a dependency.
type Histogram interface {
	Record(v float64)
}

// InstrumentConfig holds the advisory metadata an InstrumentOption sets.
// A Provider is free to ignore any of it; nothing in the scheduler depends
// on the metadata surviving.
type InstrumentConfig struct {
	Description string
	Unit        string

	// Attributes are static key-value pairs scoped to the instrument
	// itself, not per-observation. Keep cardinality bounded: these are not
	// a substitute for per-call labels.
	Attributes map[string]string
}

// InstrumentOption configures an InstrumentConfig at instrument-creation
// time.
type InstrumentOption func(*InstrumentConfig)

// WithDescription sets the instrument's advisory description. The
// scheduler uses this on every instrument it creates (see New in
// scheduler.go).
func WithDescription(desc string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Description = desc }
}

// WithUnit sets the instrument's advisory unit (e.g. "1", "seconds").
func WithUnit(unit string) InstrumentOption {
	return func(c *InstrumentConfig) { c.Unit = unit }
}

// WithAttributes attaches static attributes to the instrument. The map is
// copied so later mutation by the caller has no effect.
func WithAttributes(attrs map[string]string) InstrumentOption {
	return func(c *InstrumentConfig) {
		if len(attrs) == 0 {
			return
		}
		if c.Attributes == nil {
			c.Attributes = make(map[string]string, len(attrs))
		}
		for k, v := range attrs {
			c.Attributes[k] = v
		}
	}
}

// resolveConfig folds opts into an InstrumentConfig. Shared by every
// in-package Provider implementation that stores advisory metadata.
func resolveConfig(opts []InstrumentOption) InstrumentConfig {
	var cfg InstrumentConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
