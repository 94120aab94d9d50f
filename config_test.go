package taskengine

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ygrebnov/taskengine/metrics"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Workers)
	assert.IsType(t, metrics.NewNoopProvider(), cfg.MetricsProvider)
	assert.Equal(t, poolStrategyDynamic, cfg.RedirectPoolStrategy)
	assert.NoError(t, validateConfig(&cfg))
}

func TestValidateConfigRejectsZeroWorkers(t *testing.T) {
	cfg := defaultConfig()
	cfg.Workers = 0
	assert.ErrorIs(t, validateConfig(&cfg), ErrInvalidConfig)
}

func TestValidateConfigRejectsNilMetrics(t *testing.T) {
	cfg := defaultConfig()
	cfg.MetricsProvider = nil
	assert.ErrorIs(t, validateConfig(&cfg), ErrInvalidConfig)
}

func TestOptionsMutateConfig(t *testing.T) {
	cfg := defaultConfig()
	WithWorkers(7)(&cfg)
	assert.Equal(t, 7, cfg.Workers)

	provider := metrics.NewMemoryProvider()
	WithMetrics(provider)(&cfg)
	assert.Same(t, provider, cfg.MetricsProvider)

	WithFixedRedirectPool()(&cfg)
	assert.Equal(t, poolStrategyFixed, cfg.RedirectPoolStrategy)
}

func TestWithWorkersPanicsOnNonPositive(t *testing.T) {
	assert.Panics(t, func() { WithWorkers(0) })
	assert.Panics(t, func() { WithWorkers(-1) })
}

func TestWithMetricsPanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { WithMetrics(nil) })
}

func TestNewEngineUsesProvidedOptions(t *testing.T) {
	provider := metrics.NewMemoryProvider()
	eng := New(WithWorkers(3), WithMetrics(provider))
	defer eng.Close()
	assert.Equal(t, 3, eng.cfg.Workers)
	assert.Same(t, provider, eng.cfg.MetricsProvider)
}
