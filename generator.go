package taskengine

// Generator is a resumable producer of either a dependency on another
// future or a value. It is the Go interface for spec.md §3/§4.2's
// "Generator" contract: Resume is invoked at least once before Done is
// consulted, Done may only flip false->true as a consequence of a Produced
// return, and once Done reports true Resume must not be invoked again.
//
// Implementations may be multi-shot: a Generator can produce several values
// over its lifetime before Done() becomes true. Each production overwrites
// the previous value in the owning Future's result slot; the at-most-one-
// observation-per-production contract (spec.md §4.3) is enforced by the
// scheduler, not by Generator implementations.
type Generator[T any] interface {
	// Resume advances the generator by one step. eng is passed through so a
	// generator may Defer/Execute further generated futures as part of its
	// own logic (e.g. the sequential chain's wrapping variant).
	Resume(eng *Engine) Resume[T]

	// Done is a pure query: true once no further Resume call is legal.
	Done() bool
}

// resumeKind tags which half of a Resume union is populated.
type resumeKind uint8

const (
	resumeAwaiting resumeKind = iota
	resumeProduced
)

// Resume is the sum type a Generator's Resume method returns: either
// "awaiting future F" or "produced value V". Exactly one of the two halves
// is meaningful, selected by kind; there is no exported constructor other
// than Awaiting/Produced below, so callers cannot construct an invalid
// straddling value.
type Resume[T any] struct {
	kind     resumeKind
	awaiting *node
	value    Result[T]
}

// Awaiting builds a Resume reporting that the generator now depends on dep.
// dep's payload type need not match T: a chain may await a future of a
// different type than the one it ultimately produces, which is why
// Awaiting takes the untyped node accessor rather than Future[T].
func Awaiting[T any, D any](dep Future[D]) Resume[T] {
	return Resume[T]{kind: resumeAwaiting, awaiting: dep.node()}
}

// Produced builds a Resume reporting a completed value.
func Produced[T any](r Result[T]) Resume[T] {
	return Resume[T]{kind: resumeProduced, value: r}
}

// IsAwaiting reports whether this Resume carries a dependency.
func (r Resume[T]) IsAwaiting() bool { return r.kind == resumeAwaiting }

// --- Built-in combinator #1: identity redirect ---------------------------

// identityRedirect wraps a future F: on its first Resume it reports
// Awaiting(F); on its second Resume (reachable only once F has completed)
// it reports Produced(F.Result()) and is Done. It is used by Engine.Notify
// to re-enter the scheduler on an external completion (spec.md §4.2, §4.3).
type identityRedirect[T any] struct {
	target Future[T]
	step   int
}

func newIdentityRedirect[T any](target Future[T]) *identityRedirect[T] {
	return &identityRedirect[T]{target: target}
}

func (g *identityRedirect[T]) Resume(_ *Engine) Resume[T] {
	switch g.step {
	case 0:
		g.step = 1
		return Awaiting[T](g.target)
	default:
		g.step = 2
		return Produced[T](g.target.Result())
	}
}

func (g *identityRedirect[T]) Done() bool { return g.step == 2 }

// --- Built-in combinator #2: sequential chain -----------------------------

// chainState names the explicit states of the sequential chain so that the
// wrapping variant (f returns a Future[R] to await, rather than a bare R)
// never recurses: spec.md §4.2 "The state machine has explicit states
// Init -> Await0 -> [Await1Rearm -> Await1] -> Finished to handle the
// wrapping case without recursion."
type chainState uint8

const (
	chainInit chainState = iota
	chainAwait0
	chainAwait1Rearm
	chainAwait1
	chainFinished
)

// chain implements the non-wrapping sequential combinator: after F
// completes, produce f(F.Result()).
type chain[A, B any] struct {
	f      Future[A]
	fn     func(Result[A]) Result[B]
	state  chainState
	result Result[B]
}

// NewChain builds a generator that, once f completes, produces fn(f.Result()).
func NewChain[A, B any](f Future[A], fn func(Result[A]) Result[B]) Generator[B] {
	return &chain[A, B]{f: f, fn: fn}
}

func (c *chain[A, B]) Resume(_ *Engine) Resume[B] {
	switch c.state {
	case chainInit:
		c.state = chainAwait0
		return Awaiting[B](c.f)
	case chainAwait0:
		c.result = c.fn(c.f.Result())
		c.state = chainFinished
		return Produced[B](c.result)
	default:
		panic(ErrContractViolation)
	}
}

func (c *chain[A, B]) Done() bool { return c.state == chainFinished }

// wrappingChain implements the wrapping sequential combinator: once f
// completes, fn(f.Result()) returns a Future[B] which is itself awaited,
// and the chain produces *that* future's result.
type wrappingChain[A, B any] struct {
	f      Future[A]
	fn     func(Result[A]) Future[B]
	state  chainState
	inner  Future[B]
	result Result[B]
}

// NewWrappingChain builds a generator that, once f completes, awaits the
// Future[B] returned by fn(f.Result()) and produces its result — the
// "wrapping variant" of spec.md §4.2.
func NewWrappingChain[A, B any](f Future[A], fn func(Result[A]) Future[B]) Generator[B] {
	return &wrappingChain[A, B]{f: f, fn: fn}
}

func (c *wrappingChain[A, B]) Resume(_ *Engine) Resume[B] {
	switch c.state {
	case chainInit:
		c.state = chainAwait0
		return Awaiting[B](c.f)
	case chainAwait0:
		c.inner = c.fn(c.f.Result())
		c.state = chainAwait1Rearm
		return Awaiting[B](c.inner)
	case chainAwait1Rearm:
		// Every resume after awaiting c.inner lands here, whether Engine
		// parked us or re-entered without parking because c.inner was
		// already Completed (spec.md §4.3 fast path); chainAwait1 is never
		// assigned and shares this handling.
		fallthrough
	case chainAwait1:
		c.result = c.inner.Result()
		c.state = chainFinished
		return Produced[B](c.result)
	default:
		panic(ErrContractViolation)
	}
}

func (c *wrappingChain[A, B]) Done() bool { return c.state == chainFinished }

// --- Built-in combinator #3: function-adapted generator --------------------

// FuncStep is the body a FuncGenerator repeatedly invokes. done starts
// false; the step sets *done to true on the resume that finishes the
// generator (matching a Produced return — spec.md §4.2's "Done may only
// flip false->true as a consequence of a Produced return").
type FuncStep[S, T any] func(eng *Engine, done *bool, state *S) Resume[T]

// funcGenerator adapts a plain step function plus a state value into a
// Generator, so one-off generators don't need a dedicated named type for
// every call site. This is the Go shape of the original engine's
// lambdagen/GeneratorLGenerator helper (src/engine.hpp in the retrieval
// pack's original_source/): C++ built a Generator from a closure and an
// initial state tuple to avoid hand-writing a class per site; Go already has
// closures, so the adapter only needs to carry the mutable state and the
// done flag the step function reads and writes through pointers.
type funcGenerator[S, T any] struct {
	step  FuncStep[S, T]
	state S
	done  bool
}

// NewFuncGenerator builds a Generator from step and an initial state value,
// for call sites (one-shot resource polls, test fixtures) where defining a
// named Generator type would be pure boilerplate.
func NewFuncGenerator[S, T any](step FuncStep[S, T], initial S) Generator[T] {
	return &funcGenerator[S, T]{step: step, state: initial}
}

func (g *funcGenerator[S, T]) Resume(eng *Engine) Resume[T] {
	return g.step(eng, &g.done, &g.state)
}

func (g *funcGenerator[S, T]) Done() bool { return g.done }
