package combinators

import (
	"time"

	"github.com/ygrebnov/taskengine"
)

// Sleep is the asyncSleep(duration, value) primitive named in spec.md §8
// scenarios 2-3: a future that completes with val after d elapses, driven
// by a timer goroutine rather than any generator resume (it carries no
// dependency on the engine's own worker pool to make progress).
func Sleep[T any](eng *taskengine.Engine, d time.Duration, val T) taskengine.Future[T] {
	f := taskengine.NewNotified[T]()
	go func() {
		time.Sleep(d)
		f.CompleteNotified(taskengine.Ok(val))
		taskengine.Notify(eng, f)
	}()
	return f
}
