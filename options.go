package taskengine

import "github.com/ygrebnov/taskengine/metrics"

// Option configures an Engine. Shaped directly on the teacher's functional
// options layer (options.go): each Option mutates the private config
// struct, which New starts from defaultConfig and applies options to.
type Option func(*config)

// WithWorkers sets the fixed worker goroutine count (must be > 0).
func WithWorkers(n int) Option {
	if n <= 0 {
		panic("taskengine: WithWorkers requires n > 0")
	}
	return func(c *config) { c.Workers = n }
}

// WithMetrics sets the metrics.Provider instruments are emitted to.
func WithMetrics(p metrics.Provider) Option {
	if p == nil {
		panic("taskengine: WithMetrics requires a non-nil Provider")
	}
	return func(c *config) { c.MetricsProvider = p }
}

// WithFixedRedirectPool selects a fixed-size pool (capacity == worker count)
// for identity-redirect future reuse, instead of the default dynamic pool.
func WithFixedRedirectPool() Option {
	return func(c *config) { c.RedirectPoolStrategy = poolStrategyFixed }
}
