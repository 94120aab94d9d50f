package metrics

import (
	"reflect"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(i Counter) uintptr { return reflect.ValueOf(i).Pointer() }

func TestMemoryProviderCounterReusedAndAccumulates(t *testing.T) {
	p := NewMemoryProvider()

	c1 := p.Counter("tasks_enqueued")
	c2 := p.Counter("tasks_enqueued")
	assert.Equal(t, ptr(c1), ptr(c2), "same name must return the same instrument")

	ac, ok := c1.(*atomicCounter)
	require.True(t, ok, "expected *atomicCounter, got %T", c1)

	c1.Add(3)
	c2.Add(2)
	assert.EqualValues(t, 5, ac.Snapshot())

	other := p.Counter("other")
	assert.NotEqual(t, ptr(c1), ptr(other), "different name must return a different instrument")
}

func TestMemoryProviderUpDownCounterMoves(t *testing.T) {
	p := NewMemoryProvider()
	u1 := p.UpDownCounter("in_flight")
	u2 := p.UpDownCounter("in_flight")
	require.Same(t, u1, u2)

	g, ok := u1.(*atomicGauge)
	require.True(t, ok, "expected *atomicGauge, got %T", u1)

	u1.Add(3)
	u2.Add(-1)
	u1.Add(10)
	assert.EqualValues(t, 12, g.Snapshot())
}

func TestMemoryProviderHistogramRecordsStats(t *testing.T) {
	p := NewMemoryProvider()
	h := p.Histogram("await_seconds")

	rh, ok := h.(*runningHistogram)
	require.True(t, ok, "expected *runningHistogram, got %T", h)

	h.Record(0.1)
	h.Record(0.3)
	h.Record(0.2)

	snap := rh.Snapshot()
	assert.EqualValues(t, 3, snap.Count)
	assert.InDelta(t, 0.1, snap.Min, 1e-9)
	assert.InDelta(t, 0.3, snap.Max, 1e-9)
	assert.InDelta(t, 0.6, snap.Sum, 1e-9)
	assert.InDelta(t, 0.2, snap.Mean, 1e-9)
}

func TestMemoryProviderConcurrentLookupReturnsOneInstrument(t *testing.T) {
	p := NewMemoryProvider()
	const n = 50
	ptrs := make([]uintptr, n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(idx int) {
			defer wg.Done()
			ptrs[idx] = ptr(p.Counter("shared"))
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Equal(t, ptrs[0], ptrs[i], "lookup %d returned a different instrument", i)
	}
}

func TestMemoryProviderConcurrentCounterAdd(t *testing.T) {
	p := NewMemoryProvider()
	c := p.Counter("hits").(*atomicCounter)

	workers := runtime.NumCPU() * 2
	const iters = 1000

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < iters; i++ {
				c.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, workers*iters, c.Snapshot())
}

func TestMemoryProviderConcurrentUpDownAddSettlesAtZero(t *testing.T) {
	p := NewMemoryProvider()
	g := p.UpDownCounter("in_flight").(*atomicGauge)

	workers := runtime.NumCPU() * 2
	const iters = 1000

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < iters; i++ {
				if (i+id)%2 == 0 {
					g.Add(1)
				} else {
					g.Add(-1)
				}
			}
		}(w)
	}
	wg.Wait()

	assert.EqualValues(t, 0, g.Snapshot())
}

func TestMemoryProviderConcurrentHistogramRecord(t *testing.T) {
	p := NewMemoryProvider()
	h := p.Histogram("latency").(*runningHistogram)

	workers := runtime.NumCPU() * 2
	const iters = 500

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(base int) {
			defer wg.Done()
			for i := 0; i < iters; i++ {
				h.Record(float64((base%10)+i%10) / 100.0)
			}
		}(w)
	}
	wg.Wait()

	snap := h.Snapshot()
	assert.EqualValues(t, workers*iters, snap.Count)
	assert.GreaterOrEqual(t, snap.Min, 0.0)
	assert.LessOrEqual(t, snap.Max, 0.19)
}
