// Package ctrlc implements the process-wide interrupt singleton named in
// spec.md §6/§9: a Ctrl-C (SIGINT) notification source exposed only as an
// OutsideFuture producer, never as a generator the scheduler resumes
// directly. OS signal delivery is process-wide, so this package holds
// exactly one handler goroutine for the whole process (spec.md §9 "Global
// state... model as one-per-process with explicit init/teardown; do not
// expose it through the engine API").
package ctrlc

import (
	"os"
	"os/signal"
	"sync"

	"github.com/ygrebnov/taskengine"
)

var (
	mu      sync.Mutex
	started bool
	eng     *taskengine.Engine
	sigCh   chan os.Signal
	stopCh  chan struct{}
	waiters []taskengine.Future[struct{}]
)

// On registers interest in the next interrupt and returns a future that
// completes exactly once, the next time an interrupt is delivered. Call On
// again after each completion to keep observing interrupts — per spec.md
// §8 scenario 5, "the future fires exactly once per interrupt." The first
// call to On starts the process-wide handler goroutine; it is safe to call
// from multiple goroutines and with different engines is not supported
// (the first engine wins for the lifetime of the singleton).
func On(e *taskengine.Engine) taskengine.Future[struct{}] {
	mu.Lock()
	defer mu.Unlock()
	if !started {
		start(e)
	}
	f := taskengine.NewNotified[struct{}]()
	waiters = append(waiters, f)
	return f
}

// Un stops the handler goroutine: no future registered via On will ever
// complete again, matching spec.md §8 scenario 5's "un() causes the
// handler thread to exit and the future to stop firing." Un is idempotent.
func Un() {
	mu.Lock()
	defer mu.Unlock()
	if !started {
		return
	}
	close(stopCh)
	started = false
	waiters = nil
}

func start(e *taskengine.Engine) {
	eng = e
	sigCh = make(chan os.Signal, 1)
	stopCh = make(chan struct{})
	signal.Notify(sigCh, os.Interrupt)
	started = true
	go run()
}

func run() {
	for {
		select {
		case <-stopCh:
			signal.Stop(sigCh)
			return
		case <-sigCh:
			fire()
		}
	}
}

// fire completes every future currently registered via On and clears the
// waiter list, so each is observed exactly once for this interrupt.
func fire() {
	mu.Lock()
	pending := waiters
	waiters = nil
	e := eng
	mu.Unlock()

	for _, f := range pending {
		f.CompleteNotified(taskengine.Ok(struct{}{}))
		taskengine.Notify(e, f)
	}
}
