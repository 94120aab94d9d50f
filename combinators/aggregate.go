package combinators

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ygrebnov/taskengine"
)

// Aggregate fans in futures, blocking until every one has completed, and
// returns their results in completion order (spec.md §8 scenario 3: "order
// within the list matches completion order"). It drives the N blocking
// Awaits concurrently with errgroup.Group, matching
// everyday-items-toolkit's use of errgroup to fan a batch of independent
// units of work out onto goroutines and collect once all finish.
func Aggregate[T any](eng *taskengine.Engine, futures []taskengine.Future[T]) []taskengine.Result[T] {
	results := make([]taskengine.Result[T], 0, len(futures))
	var mu sync.Mutex

	var g errgroup.Group
	for _, f := range futures {
		f := f
		g.Go(func() error {
			r := Await(eng, f)
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // awaiter generators never return an error

	return results
}

// completionEvent tags an aggregated result with its original position, so
// AggregateOrdered can restore input order from completion order.
type completionEvent[T any] struct {
	idx int
	val taskengine.Result[T]
}

// AggregateOrdered fans in futures exactly like Aggregate, but returns
// results indexed by their position in futures rather than by completion
// order. Grounded on the teacher's reorderer/preserve_order.go cursor +
// buffer bookkeeping (map[int]R flushed contiguously from a "next" cursor);
// unlike the teacher's streaming reorderer this drains a fixed-size batch,
// and every future always produces a Result (never a no-value completion),
// so the teacher's seenNoRes bookkeeping has no counterpart here.
func AggregateOrdered[T any](eng *taskengine.Engine, futures []taskengine.Future[T]) []taskengine.Result[T] {
	n := len(futures)
	events := make(chan completionEvent[T], n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i, f := range futures {
		i, f := i, f
		go func() {
			defer wg.Done()
			events <- completionEvent[T]{idx: i, val: Await(eng, f)}
		}()
	}
	go func() {
		wg.Wait()
		close(events)
	}()

	out := make([]taskengine.Result[T], n)
	buf := make(map[int]taskengine.Result[T], n)
	next := 0
	flush := func() {
		for {
			v, ok := buf[next]
			if !ok {
				return
			}
			out[next] = v
			delete(buf, next)
			next++
		}
	}

	for ev := range events {
		buf[ev.idx] = ev.val
		flush()
	}
	return out
}
