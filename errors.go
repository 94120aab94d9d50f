package taskengine

import "errors"

// Namespace prefixes every sentinel error in this package, mirroring the
// teacher's single-namespace error table (see DESIGN.md).
const Namespace = "taskengine"

var (
	// ErrNotSuspended is the value Execute panics with when its argument is
	// not a generated future currently in the Suspended state (spec.md §4.3).
	ErrNotSuspended = errors.New(Namespace + ": execute requires a suspended generated future")

	// ErrEngineClosed is the value Execute/Launch panic with once Close has
	// shut the engine down. A closed ioreactor's ArmRead/ArmWrite return it
	// as an ordinary error.
	ErrEngineClosed = errors.New(Namespace + ": engine is closed")

	// ErrContractViolation marks scheduling API misuse: calling
	// CompleteNotified on a generated future, parking a second awaiter on the
	// same dependency, resuming a chain that has already finished. Per
	// spec.md §7 this is fatal and never surfaced as a value — callers that
	// hit it via a panic recover at their own risk.
	ErrContractViolation = errors.New(Namespace + ": contract violation")

	// ErrDoubleComplete marks a notified future completed more than once.
	ErrDoubleComplete = errors.New(Namespace + ": notified future completed twice")

	// ErrCancelled is the dedicated cancellation error surfaced by resources
	// on a cancelled I/O operation (spec.md §4.7).
	ErrCancelled = errors.New(Namespace + ": operation cancelled")

	// ErrProtocol marks a malformed buffered read (e.g. delimiter not found
	// before EOF) at the ioresource L2 surface (spec.md §7).
	ErrProtocol = errors.New(Namespace + ": protocol error")

	// ErrInvalidConfig is the value New panics with when the assembled
	// config fails validation.
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")
)
