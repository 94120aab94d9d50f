// Package ioreactor implements the per-platform readiness/completion
// reactor of spec.md §4.5: a fixed-size thread pool (typically one
// goroutine) that owns a platform completion object, resolves each event to
// a resource, and calls taskengine.Notify on that resource's engine-
// interrupt future. The reactor never executes user generators — it only
// posts notifications.
package ioreactor

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/ygrebnov/taskengine"
)

// CompletionKind tags the three terminal outcomes a resource's engine-
// interrupt future can carry, per spec.md §4.6/§4.7.
type CompletionKind int

const (
	CompletionReady CompletionKind = iota
	CompletionError
	CompletionCancelled
)

// Completion is the payload stored in a resource's engine-interrupt future
// once the reactor observes an event for it.
type Completion struct {
	Kind CompletionKind
	Err  error
}

// Reactor is the platform-independent surface ioresource depends on. The
// concrete implementation is selected per-platform by newPlatformReactor
// (reactor_unix.go / reactor_windows.go, both unexported).
type Reactor interface {
	// ArmRead/ArmWrite register one-shot readiness interest for fd,
	// completing future via taskengine.Notify on the next edge/event.
	// Re-arming an fd that already has an outstanding interest of the same
	// direction is a contract violation (each resource has exactly one
	// operation in flight at a time, per spec.md §9 "Engine interrupt
	// future").
	ArmRead(fd int, future taskengine.Future[Completion]) error
	ArmWrite(fd int, future taskengine.Future[Completion]) error

	// Forget removes any armed interest for fd, used when a resource closes
	// without having observed a final completion.
	Forget(fd int)

	// Tickets exposes the resource ticket-counting protocol (§4.6 last
	// paragraph).
	Tickets() *Tickets

	// Close shuts the reactor down: its background goroutine(s) exit and
	// are joinable after Close returns.
	Close() error
}

// New constructs the platform-appropriate Reactor bound to eng; completions
// are delivered by calling taskengine.Notify(eng, ...) on the engine-
// interrupt future supplied to ArmRead/ArmWrite.
func New(eng *taskengine.Engine) (Reactor, error) {
	return newPlatformReactor(eng)
}

// Tickets counts outstanding resources so the reactor's own quiescence can
// be observed independently of the scheduler's (spec.md §4.6). Grounded on
// golang.org/x/sync/semaphore.Weighted for the acquire/release protocol
// (sourced from everyday-items-toolkit's go.mod, see SPEC_FULL.md DOMAIN
// STACK), paired with a mutex+cond idle gate in the same shape as
// taskengine's own notifyMap quiescence gate.
type Tickets struct {
	sem *semaphore.Weighted

	mu   sync.Mutex
	cond *sync.Cond
	n    int
}

// NewTickets builds a Tickets counter allowing at most max outstanding
// resources at once.
func NewTickets(max int64) *Tickets {
	t := &Tickets{sem: semaphore.NewWeighted(max)}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// Acquire blocks (respecting ctx) until a ticket is available, then counts
// one more outstanding resource.
func (t *Tickets) Acquire(ctx context.Context) error {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	t.mu.Lock()
	t.n++
	t.mu.Unlock()
	return nil
}

// Release returns one ticket and, if this was the last outstanding
// resource, wakes any goroutine blocked in WaitIdle.
func (t *Tickets) Release() {
	t.sem.Release(1)
	t.mu.Lock()
	t.n--
	if t.n == 0 {
		t.cond.Broadcast()
	}
	t.mu.Unlock()
}

// Idle reports whether no resources are currently outstanding.
func (t *Tickets) Idle() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.n == 0
}

// WaitIdle blocks until Idle() holds.
func (t *Tickets) WaitIdle() {
	t.mu.Lock()
	for t.n > 0 {
		t.cond.Wait()
	}
	t.mu.Unlock()
}
