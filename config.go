package taskengine

import (
	"runtime"

	"github.com/ygrebnov/taskengine/metrics"
	"github.com/ygrebnov/taskengine/pool"
)

// config holds Engine configuration. Shaped directly on the teacher's
// Config struct (see DESIGN.md): a plain field-per-knob struct, assembled
// either directly or through functional Options.
type config struct {
	// Workers is the fixed number of worker goroutines the engine owns for
	// its lifetime (spec.md §5: "The number of workers is fixed at engine
	// construction.").
	// Default: runtime.GOMAXPROCS(0).
	Workers int

	// MetricsProvider receives scheduler instrumentation (queue depth,
	// in-flight count, await duration). Default: metrics.NoopProvider{}.
	MetricsProvider metrics.Provider

	// RedirectPoolStrategy selects how identity-redirect futures created by
	// Notify are recycled. Default: dynamic (sync.Pool-backed).
	RedirectPoolStrategy poolStrategy
}

type poolStrategy int

const (
	poolStrategyDynamic poolStrategy = iota
	poolStrategyFixed
)

func defaultConfig() config {
	return config{
		Workers:              runtime.GOMAXPROCS(0),
		MetricsProvider:      metrics.NewNoopProvider(),
		RedirectPoolStrategy: poolStrategyDynamic,
	}
}

// validateConfig performs lightweight invariant checks, mirroring the
// teacher's validateConfig gate.
func validateConfig(cfg *config) error {
	if cfg.Workers <= 0 {
		return ErrInvalidConfig
	}
	if cfg.MetricsProvider == nil {
		return ErrInvalidConfig
	}
	return nil
}

// newPool builds the pool.Pool backing redirect-future reuse, per the
// configured strategy (see DESIGN.md "pool subpackage").
func (cfg config) newPool(newFn func() interface{}) pool.Pool {
	if cfg.RedirectPoolStrategy == poolStrategyFixed {
		return pool.NewFixed(uint(cfg.Workers), newFn)
	}
	return pool.NewDynamic(newFn)
}
