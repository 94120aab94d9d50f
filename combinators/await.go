package combinators

import "github.com/ygrebnov/taskengine"

// awaiter is a single-shot generator that awaits target, records its
// result, then signals done. It only touches taskengine's exported
// Awaiting/Produced/Future.Result surface, so Await needs no access to the
// scheduler's notification map.
//
// result is captured into the generator itself, rather than read back from
// the Future Launch returns, because that Future's own Completed
// transition races the close(done) signal below: this way, the happens-
// before edge is the channel close, not a second State() sample.
type awaiter[T any] struct {
	target taskengine.Future[T]
	done   chan struct{}
	result taskengine.Result[T]
	step   int
}

func (a *awaiter[T]) Resume(_ *taskengine.Engine) taskengine.Resume[T] {
	if a.step == 0 {
		a.step = 1
		return taskengine.Awaiting[T](a.target)
	}
	a.result = a.target.Result()
	a.step = 2
	close(a.done)
	return taskengine.Produced[T](a.result)
}

func (a *awaiter[T]) Done() bool { return a.step == 2 }

// Await blocks the calling goroutine until f completes and returns its
// result. It works by launching a generator that parks on f the same way
// any in-engine dependent would, so Await composes with the scheduler's
// normal resume/notify path rather than busy-polling Future.State.
func Await[T any](eng *taskengine.Engine, f taskengine.Future[T]) taskengine.Result[T] {
	g := &awaiter[T]{target: f, done: make(chan struct{})}
	taskengine.Launch[T](eng, g)
	<-g.done
	return g.result
}
