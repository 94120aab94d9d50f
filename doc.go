// Package taskengine implements a cooperatively-scheduled asynchronous task
// engine: user work is expressed as generators (resumable computations)
// scheduled across a fixed pool of worker goroutines, coordinated through a
// wait/notify graph of futures.
//
// Core types
//   - Future: a reference-counted handle to a value that becomes available
//     later. Either generator-backed (a Task known to the scheduler) or
//     externally notified (driven by an I/O reactor, a timer, or a direct
//     Notify call).
//   - Generator: a resumable producer. Each Resume either yields a
//     dependency on another Future or produces a value.
//   - Engine: the scheduler. Defer wraps a Generator as a suspended Future;
//     Execute schedules it; Launch does both. Notify wakes whichever task is
//     parked on a future that an external producer just completed.
//
// Defaults
// Unless overridden via Option, a newly constructed Engine uses:
//   - Workers: runtime.GOMAXPROCS(0), read once at construction and fixed
//     for the engine's lifetime.
//   - Metrics: metrics.NoopProvider (no instrumentation).
//   - Pool strategy: dynamic (sync.Pool-backed) redirect-future reuse.
//
// Shutdown
// Close is synchronous: it waits for quiescence (every worker idle and the
// notification map empty), then closes the work queue and joins the
// workers. It is safe to call Close from any goroutine and at most once of
// its effects take place (subsequent calls are no-ops).
package taskengine
