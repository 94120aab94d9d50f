package taskengine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/ygrebnov/taskengine/metrics"
	"github.com/ygrebnov/taskengine/pool"
)

// Engine is the scheduler core: a fixed-size worker pool running the
// resume/suspend/notify loop of spec.md §4.3, plus the quiescence/shutdown
// machinery of §4.4.
//
// Grounded on the teacher's Workers[R] façade (workers.go) + dispatcher
// (dispatcher.go) + worker (worker.go) split: a front door that owns
// channels/state, a loop that hands ready work to an executor, and an
// executor that recovers panics — generalized from "one task, one call"
// to "a resume trampoline that may re-enter itself across an arbitrarily
// long dependency chain without recursion" (spec.md §2).
type Engine struct {
	cfg config

	queue   *workQueue
	notify_ *notifyMap

	redirectPool pool.Pool

	wg     sync.WaitGroup
	once   sync.Once
	closed atomic.Bool

	metrics struct {
		queueDepth    metrics.UpDownCounter
		inFlight      metrics.UpDownCounter
		awaitDuration metrics.Histogram
	}
}

// New constructs an Engine from functional options and starts its worker
// goroutines immediately — unlike the teacher's Workers[R], there is no
// separate Start call: spec.md's scheduler has no "configured but not yet
// running" state, only per-task Suspended/Queued.
func New(opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validateConfig(&cfg); err != nil {
		panic(err)
	}

	eng := &Engine{
		cfg:     cfg,
		queue:   newWorkQueue(),
		notify_: newNotifyMap(),
	}
	eng.notify_.setWorkerCount(cfg.Workers)

	eng.metrics.queueDepth = cfg.MetricsProvider.UpDownCounter(
		"taskengine_queue_depth", metrics.WithDescription("ready tasks waiting in the work queue"),
	)
	eng.metrics.inFlight = cfg.MetricsProvider.UpDownCounter(
		"taskengine_in_flight", metrics.WithDescription("tasks currently Running (being resumed by a worker)"),
	)
	eng.metrics.awaitDuration = cfg.MetricsProvider.Histogram(
		"taskengine_await_seconds", metrics.WithDescription("time a task spends parked on a dependency"),
	)

	eng.redirectPool = cfg.newPool(func() interface{} { return new(node) })

	eng.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go eng.workerLoop()
	}

	return eng
}

// Defer constructs a generated future wrapping g, in the Suspended state.
// It does not schedule the future; call Execute (or use Launch) to do so.
func Defer[T any](eng *Engine, g Generator[T]) Future[T] {
	n := &node{kind: kindGenerated, id: uuid.NewString()}
	n.state.Store(int32(Suspended))
	result := new(Result[T])

	n.step = func(e *Engine) (dep *node, produced bool, doneAfter bool) {
		r := g.Resume(e)
		if r.IsAwaiting() {
			return r.awaiting, false, false
		}
		*result = r.value
		return nil, true, g.Done()
	}

	return Future[T]{n: n, result: result}
}

// Execute transitions a Suspended generated future to Queued and pushes it
// onto the work queue. It panics with ErrNotSuspended if f is not a
// generated future currently Suspended (spec.md §4.3), and with
// ErrEngineClosed if the engine has begun shutdown.
func Execute[T any](eng *Engine, f Future[T]) {
	eng.schedule(f.node())
}

// schedule is the untyped core of Execute, reused internally by Notify for
// the identity-redirect nodes it creates (which have no natural Future[T]
// to route through the exported, type-checked Execute).
func (eng *Engine) schedule(n *node) {
	if eng.closed.Load() {
		panic(ErrEngineClosed)
	}
	if n.kind != kindGenerated || FutureState(n.state.Load()) != Suspended {
		panic(ErrNotSuspended)
	}
	n.state.Store(int32(Queued))
	eng.metrics.queueDepth.Add(1)
	eng.queue.push(n)
}

// Launch is Execute(Defer(eng, g)).
func Launch[T any](eng *Engine, g Generator[T]) Future[T] {
	f := Defer(eng, g)
	Execute(eng, f)
	return f
}

// Notify is called by an external completer on a notified future that has
// just transitioned to Completed. If no awaiter is parked on f, the call is
// a no-op; otherwise a fresh identity-redirect generated future is created,
// the awaiter is re-parked on it, and the redirect is scheduled — spec.md
// §4.3. The redirect node is recycled via Engine.redirectPool (see
// DESIGN.md "pool subpackage"): it never escapes to caller code, so it is
// safe to return to the pool once threado has finished with it.
func Notify[T any](eng *Engine, f Future[T]) {
	n := f.node()
	waiter, ok := eng.notify_.takeAwaiter(n)
	if !ok {
		return
	}

	redirect := eng.redirectPool.Get().(*node)
	*redirect = node{kind: kindGenerated, id: n.id, recyclable: true}
	redirect.state.Store(int32(Suspended))

	g := newIdentityRedirect(f)
	redirect.step = func(e *Engine) (dep *node, produced bool, doneAfter bool) {
		r := g.Resume(e)
		if r.IsAwaiting() {
			return r.awaiting, false, false
		}
		return nil, true, g.Done()
	}

	eng.notify_.park(redirect, waiter)
	eng.schedule(redirect)
}

// workerLoop is one worker goroutine running the main loop of spec.md §4.3:
// pop a ready task, then threado it to completion or park.
func (eng *Engine) workerLoop() {
	defer eng.wg.Done()
	for {
		eng.notify_.markIdle()
		n, ok := eng.queue.pop()
		eng.notify_.markBusy()
		if !ok {
			return // closed pop: exit the thread
		}
		eng.metrics.queueDepth.Add(-1)
		eng.threado(n)
	}
}

// threado is the resume/suspend/notify trampoline. It never recurses: the
// `for task = ...; continue` shape below is exactly spec.md §4.3's
// pseudocode, propagating completions back up an arbitrarily long
// dependency chain in a single stack frame (spec.md §2).
func (eng *Engine) threado(task *node) {
	if FutureState(task.state.Load()) > Running {
		return // already advanced by another path
	}
	for {
		if parkedAt := task.parkedAt; parkedAt != 0 {
			eng.metrics.awaitDuration.Record(time.Since(time.Unix(0, parkedAt)).Seconds())
			task.parkedAt = 0
		}

		task.state.Store(int32(Running))
		eng.metrics.inFlight.Add(1)
		dep, produced, doneAfter := task.step(eng)
		eng.metrics.inFlight.Add(-1)

		if !produced {
			switch FutureState(dep.state.Load()) {
			case Completed:
				// Continue in-thread without touching the notification map
				// (spec.md §4.3 "the worker re-enters resume without
				// touching the notification map").
				continue

			case Suspended:
				// A lazy dependency: defer-ed but never executed. Walk into
				// it on the same thread, threading the parent through the
				// notification map.
				task.state.Store(int32(Awaiting))
				task.parkedAt = time.Now().UnixNano()
				eng.notify_.park(dep, task)
				dep.state.Store(int32(Queued))
				task = dep
				continue

			default: // Queued, Awaiting, Running: a parallel dependency, park.
				task.state.Store(int32(Awaiting))
				task.parkedAt = time.Now().UnixNano()
				eng.notify_.park(dep, task)
				return
			}
		}

		// Produced(v): the result was already stored into the future's slot
		// by Defer's closure (Notify's redirect nodes carry no result slot of
		// their own); advance state and look for a parked awaiter.
		if doneAfter {
			task.state.Store(int32(Completed))
		} else {
			task.state.Store(int32(Suspended))
		}

		parent, ok := eng.notify_.takeAwaiter(task)

		if task.recyclable && doneAfter {
			eng.redirectPool.Put(task)
		}

		if !ok {
			return
		}
		task = parent
	}
}

// waitForIdle blocks the caller until the engine reaches quiescence (all
// workers idle and the notification map empty), per spec.md §4.4. It does
// not close the queue; call Close for that.
func (eng *Engine) waitForIdle() { eng.notify_.waitQuiescent() }

// Close blocks until the engine is quiescent, then closes the work queue
// (unblocking every worker's pop) and joins all worker goroutines. Safe to
// call from any goroutine; the shutdown sequence runs at most once.
func (eng *Engine) Close() {
	eng.once.Do(func() {
		eng.waitForIdle()
		eng.closed.Store(true)
		eng.queue.close()
		eng.wg.Wait()
	})
}

// QueueLen and Parked report current depths, for diagnostics/tests.
func (eng *Engine) QueueLen() int { return eng.queue.len() }
func (eng *Engine) Parked() int  { return eng.notify_.len() }
