package tests

import (
	"reflect"
	"testing"

	"github.com/ygrebnov/taskengine"
	"github.com/ygrebnov/taskengine/combinators"
)

// rangeGen produces 0..n-1 as n successive Produced values — the "generator
// producing integers 0..4 as five successive Produced values" of spec.md §8
// scenario 1.
type rangeGen struct {
	n    int
	next int
}

func (g *rangeGen) Resume(_ *taskengine.Engine) taskengine.Resume[int] {
	v := g.next
	g.next++
	return taskengine.Produced[int](taskengine.Ok(v))
}

func (g *rangeGen) Done() bool { return g.next >= g.n }

// rangeAccumulator drives a multi-shot future to completion by re-arming its
// await each time the dependency produces without being Done, collecting
// every observed value — exercising spec.md §4.3's "a generator that
// produces multiple values produces them in program order."
type rangeAccumulator struct {
	source    taskengine.Future[int]
	collected []int
	awaited   bool
	done      bool
}

func (a *rangeAccumulator) Resume(_ *taskengine.Engine) taskengine.Resume[[]int] {
	if !a.awaited {
		a.awaited = true
		return taskengine.Awaiting[[]int](a.source)
	}

	a.collected = append(a.collected, a.source.Result().Value)
	if a.source.State() == taskengine.Completed {
		a.done = true
		return taskengine.Produced[[]int](taskengine.Ok(a.collected))
	}
	return taskengine.Awaiting[[]int](a.source)
}

func (a *rangeAccumulator) Done() bool { return a.done }

func TestRangeAccumulatesFiveSuccessiveValues(t *testing.T) {
	eng := taskengine.New(taskengine.WithWorkers(2))
	defer eng.Close()

	source := taskengine.Defer[int](eng, &rangeGen{n: 5})
	f := taskengine.Launch[[]int](eng, &rangeAccumulator{source: source})
	result := combinators.Await(eng, f)

	want := []int{0, 1, 2, 3, 4}
	if got := result.Value; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
