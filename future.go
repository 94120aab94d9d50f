package taskengine

import "sync/atomic"

// FutureState is the five-valued state tag from the core data model.
// Ordering matters: states strictly less than Completed are "pending", and
// the scheduler treats <= Running as "this task object is resumable or
// currently being resumed by this worker."
type FutureState int32

const (
	Suspended FutureState = iota
	Queued
	Running
	Awaiting
	Completed
)

func (s FutureState) String() string {
	switch s {
	case Suspended:
		return "suspended"
	case Queued:
		return "queued"
	case Running:
		return "running"
	case Awaiting:
		return "awaiting"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// pending reports whether s is strictly less than Completed.
func (s FutureState) pending() bool { return s < Completed }

// resumable reports whether s is <= Running: the task object is either
// resumable (Suspended/Queued) or currently being resumed by its owning
// worker (Running).
func (s FutureState) resumable() bool { return s <= Running }

// Result is a move-only container for generator output. Result[struct{}] is
// the void specialization: it carries no payload but still witnesses
// completion via Present/Err (its zero value has Present == false).
type Result[T any] struct {
	Value   T
	Err     error
	Present bool
}

// Ok builds a present, error-free Result.
func Ok[T any](v T) Result[T] { return Result[T]{Value: v, Present: true} }

// ErrResult builds a present Result carrying an error.
func ErrResult[T any](err error) Result[T] { return Result[T]{Err: err, Present: true} }

// kind tags which Future variant a node is.
type kind uint8

const (
	kindGenerated kind = iota
	kindNotified
)

// node is the untyped, reference-counted-by-GC handle spec.md §3 describes
// as "Future (abstract)". It is identified by address; equality is pointer
// identity. The scheduler, work queue, and notification map operate
// exclusively on *node so they never need to know a future's payload type T
// — the sum-type dispatch the spec calls for is the kind switch here, not a
// dynamic downcast (see DESIGN.md "Sum type over future variants").
//
// Future[T] (below) is the typed accessor glued on top of one node.
type node struct {
	state atomic.Int32 // FutureState; exclusive-writer discipline, see Future.State
	kind  kind
	id    string // correlation id, observability only

	// step advances a generated node by exactly one Resume call. It returns
	// the future the generator now depends on (dep != nil) or reports that a
	// value was produced (produced == true); doneAfter reports whether the
	// generator's done() became true as a result of this step. step is nil
	// for notified nodes.
	step func(eng *Engine) (dep *node, produced bool, doneAfter bool)

	// recyclable marks a node created purely for internal scheduling use
	// (currently: Notify's identity-redirect futures) that never escapes to
	// caller code, so it is safe to return to Engine.redirectPool once it
	// reaches Completed and has handed its awaiter off.
	recyclable bool

	// parkedAt records when this node was last parked in the notification
	// map (UnixNano, 0 when not parked), for the scheduler's await-duration
	// histogram.
	parkedAt int64
}

func (n *node) State() FutureState { return FutureState(n.state.Load()) }

// Future is the typed, reference-counted handle to a value that becomes
// available later — the user-facing half of spec.md §3's "Future
// (abstract)". It is a thin generic view over one node plus a typed result
// slot; two Future[T] values referring to the same node compare as the same
// future via the underlying node pointer.
type Future[T any] struct {
	n      *node
	result *Result[T]
}

// State is a non-blocking, non-synchronizing read. It is only meaningful
// when sampled from within the scheduler's ownership window (the worker
// currently holding the task Running) or by the unique producer that holds
// completion rights over a notified future.
func (f Future[T]) State() FutureState { return f.n.State() }

// Result returns the completed value. Only valid once State() == Completed.
func (f Future[T]) Result() Result[T] { return *f.result }

// ID returns the future's correlation identifier, for observability only.
func (f Future[T]) ID() string { return f.n.id }

// node exposes the untyped handle backing this Future, for use by the
// scheduler and by Awaiting, which parks on a future without knowing its
// payload type. It is unexported, so packages outside taskengine (such as
// combinators) cannot call it.
func (f Future[T]) node() *node { return f.n }

// NewNotified constructs a Future whose completion is driven externally (an
// I/O reactor, a timer, or a direct CompleteNotified call) rather than by
// the scheduler's resume loop. It starts Running per spec.md §3: "a
// notified future's state is either Running (not yet completed) or
// Completed."
func NewNotified[T any]() Future[T] {
	n := &node{kind: kindNotified}
	n.state.Store(int32(Running))
	return Future[T]{n: n, result: new(Result[T])}
}

// CompleteNotified transitions a notified future to Completed and stores its
// result. Calling it twice, or calling it on a generated future, is a
// contract violation (spec.md §7) and panics rather than returning an error,
// matching the teacher's "contract violations abort the worker" policy.
func (f Future[T]) CompleteNotified(r Result[T]) {
	if f.n.kind != kindNotified {
		panic(ErrContractViolation)
	}
	if FutureState(f.n.state.Load()) == Completed {
		panic(ErrDoubleComplete)
	}
	*f.result = r
	f.n.state.Store(int32(Completed))
}
