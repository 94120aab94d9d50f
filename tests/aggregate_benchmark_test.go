package tests

import (
	"testing"
	"time"

	"github.com/ygrebnov/taskengine"
	"github.com/ygrebnov/taskengine/combinators"
)

// constantGenerator is a single-shot generator producing a fixed value,
// reused across benchmarks below.
type constantGenerator struct {
	value int
	done  bool
}

func (g *constantGenerator) Resume(_ *taskengine.Engine) taskengine.Resume[int] {
	g.done = true
	return taskengine.Produced[int](taskengine.Ok(g.value))
}

func (g *constantGenerator) Done() bool { return g.done }

// BenchmarkLaunch measures the cost of launching and awaiting N
// independent single-shot futures, mirroring the teacher's RunAll
// benchmark shape (tests/run_all_benchmark_test.go) applied to this
// engine's Launch/Await instead of workers.RunAll.
func BenchmarkLaunch(b *testing.B) {
	eng := taskengine.New(taskengine.WithWorkers(8))
	defer eng.Close()

	b.Run("1000", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			futures := make([]taskengine.Future[int], 1000)
			for j := range futures {
				futures[j] = taskengine.Launch[int](eng, &constantGenerator{value: j})
			}
			for _, f := range futures {
				combinators.Await(eng, f)
			}
		}
	})
}

// BenchmarkAggregate measures combinators.Aggregate fanning in N sleeps,
// mirroring spec.md §8 scenario 3 at benchmark scale.
func BenchmarkAggregate(b *testing.B) {
	eng := taskengine.New(taskengine.WithWorkers(8))
	defer eng.Close()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		futures := make([]taskengine.Future[int], 50)
		for j := range futures {
			futures[j] = combinators.Sleep(eng, time.Microsecond, j)
		}
		combinators.Aggregate(eng, futures)
	}
}
