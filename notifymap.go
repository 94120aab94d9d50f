package taskengine

import "sync"

// notifyMap is the wait graph from spec.md §3: "mapping from future handle
// K to future handle V: when K completes, resume V." At most one entry per
// K at any time — an awaiter is the unique predecessor that parked on K.
//
// Grounded on the teacher's reorderer/preserve-order bookkeeping
// (map[int]R + map[int]struct{} guarded by implicit single-goroutine
// ownership, see DESIGN.md); generalized here to a mutex-guarded
// map[*node]*node since multiple scheduler workers touch it concurrently.
type notifyMap struct {
	mu      sync.Mutex
	awaiter map[*node]*node

	// idle/empty gate for quiescence (spec.md §5): both the idle counter and
	// "is this map empty" must be observed together under this same mutex to
	// avoid a lost-wakeup race against the last completion.
	idle       int
	workers    int
	idleWakeup *sync.Cond
}

func newNotifyMap() *notifyMap {
	nm := &notifyMap{awaiter: make(map[*node]*node)}
	nm.idleWakeup = sync.NewCond(&nm.mu)
	return nm
}

// park records that waiter is parked on dep. It is a contract violation to
// park a second waiter on a dep that already has one (spec.md §3: "at most
// one entry per K").
func (nm *notifyMap) park(dep, waiter *node) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	if _, exists := nm.awaiter[dep]; exists {
		panic(ErrContractViolation)
	}
	nm.awaiter[dep] = waiter
	nm.idleWakeup.Broadcast()
}

// takeAwaiter atomically reads and removes the entry keyed by dep, returning
// (waiter, true) if one was parked. The atomic read-and-remove is what
// spec.md §5 requires of the notify path "to avoid double-dispatch."
func (nm *notifyMap) takeAwaiter(dep *node) (*node, bool) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	w, ok := nm.awaiter[dep]
	if ok {
		delete(nm.awaiter, dep)
		nm.idleWakeup.Broadcast()
	}
	return w, ok
}

// empty reports whether the notification map currently holds no entries.
func (nm *notifyMap) empty() bool {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	return len(nm.awaiter) == 0
}

// markIdle/markBusy track how many workers are currently blocked in
// workQueue.pop, gating Engine.waitForIdle. Both update the counter under
// the same mutex notifyMap already uses for emptiness, and markIdle
// broadcasts, so a completion that removes the last awaiter entry and a
// worker that becomes idle can never race past each other unobserved.
// markBusy does not broadcast: a worker turning busy cannot make the engine
// quiescent.
func (nm *notifyMap) markIdle() {
	nm.mu.Lock()
	nm.idle++
	nm.idleWakeup.Broadcast()
	nm.mu.Unlock()
}

func (nm *notifyMap) markBusy() {
	nm.mu.Lock()
	nm.idle--
	nm.mu.Unlock()
}

func (nm *notifyMap) setWorkerCount(n int) {
	nm.mu.Lock()
	nm.workers = n
	nm.mu.Unlock()
}

// quiescent reports whether all workers are idle and the notification map
// is empty, under one lock acquisition.
func (nm *notifyMap) quiescent() bool {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	return nm.idle >= nm.workers && len(nm.awaiter) == 0
}

// waitQuiescent blocks until quiescent() holds, using the same mutex/cond
// pair markIdle/markBusy signal on so no wakeup is lost.
func (nm *notifyMap) waitQuiescent() {
	nm.mu.Lock()
	for !(nm.idle >= nm.workers && len(nm.awaiter) == 0) {
		nm.idleWakeup.Wait()
	}
	nm.mu.Unlock()
}

// len reports the current number of parked entries, for metrics only.
func (nm *notifyMap) len() int {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	return len(nm.awaiter)
}
