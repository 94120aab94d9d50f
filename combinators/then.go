// Package combinators provides generator combinators built purely as
// clients of taskengine's exported API (spec.md §1 Non-goals: "additional
// combinators beyond the two primitives required by the protocol... are
// pure clients of the core"). Nothing here reaches into taskengine's
// unexported scheduling internals.
package combinators

import "github.com/ygrebnov/taskengine"

// Then launches a future that, once f completes, produces fn(f.Result()).
// It is sugar over taskengine.NewChain + Launch.
func Then[A, B any](eng *taskengine.Engine, f taskengine.Future[A], fn func(taskengine.Result[A]) taskengine.Result[B]) taskengine.Future[B] {
	return taskengine.Launch[B](eng, taskengine.NewChain(f, fn))
}

// ThenFuture launches a future that, once f completes, awaits the
// Future[B] returned by fn(f.Result()) and produces its result. It is
// sugar over taskengine.NewWrappingChain + Launch.
func ThenFuture[A, B any](eng *taskengine.Engine, f taskengine.Future[A], fn func(taskengine.Result[A]) taskengine.Future[B]) taskengine.Future[B] {
	return taskengine.Launch[B](eng, taskengine.NewWrappingChain(f, fn))
}
