//go:build windows

package ioreactor

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/ygrebnov/taskengine"
)

// windowsReactor wraps an I/O completion port (spec.md §4.5's Windows
// paragraph): handles are associated with the port using the handle value
// as completion key, and that key identifies the owning waiter entry on
// completion; the OVERLAPPED record's address is not consulted.
type windowsReactor struct {
	eng  *taskengine.Engine
	port windows.Handle

	mu      sync.Mutex
	waiters map[uintptr]*waiterEntry // keyed by completion key (fd/handle)
	closed  bool

	tickets *Tickets
	done    chan struct{}
}

type waiterEntry struct {
	read  taskengine.Future[Completion]
	write taskengine.Future[Completion]
}

// shutdownKey is the distinguished completion key posted to unblock
// GetQueuedCompletionStatus on Close, per spec.md §4.5 "Shutdown is
// signaled by posting a distinguished completion."
const shutdownKey = ^uintptr(0)

func newPlatformReactor(eng *taskengine.Engine) (Reactor, error) {
	if err := windows.WSAStartup(uint32(0x0202), &windows.WSAData{}); err != nil {
		return nil, err
	}

	port, err := windows.CreateIoCompletionPort(windows.InvalidHandle, 0, 0, 0)
	if err != nil {
		windows.WSACleanup()
		return nil, err
	}

	r := &windowsReactor{
		eng:     eng,
		port:    port,
		waiters: make(map[uintptr]*waiterEntry),
		tickets: NewTickets(1 << 20),
		done:    make(chan struct{}),
	}
	go r.run()
	return r, nil
}

// associate registers handle with the completion port, keyed by its own
// value so GetQueuedCompletionStatus's completion key identifies the
// waiter entry without a separate lookup table keyed on the OVERLAPPED
// pointer.
func (r *windowsReactor) associate(fd int) error {
	h := windows.Handle(fd)
	_, err := windows.CreateIoCompletionPort(h, r.port, uintptr(fd), 0)
	return err
}

func (r *windowsReactor) entry(fd int) *waiterEntry {
	key := uintptr(fd)
	e, ok := r.waiters[key]
	if !ok {
		e = &waiterEntry{}
		r.waiters[key] = e
	}
	return e
}

func (r *windowsReactor) ArmRead(fd int, future taskengine.Future[Completion]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return taskengine.ErrEngineClosed
	}
	if err := r.associate(fd); err != nil {
		return err
	}
	r.entry(fd).read = future
	return nil
}

func (r *windowsReactor) ArmWrite(fd int, future taskengine.Future[Completion]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return taskengine.ErrEngineClosed
	}
	if err := r.associate(fd); err != nil {
		return err
	}
	r.entry(fd).write = future
	return nil
}

func (r *windowsReactor) Forget(fd int) {
	r.mu.Lock()
	delete(r.waiters, uintptr(fd))
	r.mu.Unlock()
}

func (r *windowsReactor) Tickets() *Tickets { return r.tickets }

func (r *windowsReactor) run() {
	var bytes uint32
	var key uintptr
	var overlapped *windows.Overlapped

	for {
		err := windows.GetQueuedCompletionStatus(r.port, &bytes, &key, &overlapped, windows.INFINITE)
		if key == shutdownKey {
			close(r.done)
			windows.CloseHandle(r.port)
			windows.WSACleanup()
			return
		}

		r.mu.Lock()
		e, ok := r.waiters[key]
		if ok {
			delete(r.waiters, key)
		}
		r.mu.Unlock()
		if !ok {
			continue
		}

		kind := CompletionReady
		if err != nil {
			kind = CompletionError
		}
		_ = unsafe.Pointer(overlapped) // overlapped record address identifies the operation, not consulted further here

		if e.read != (taskengine.Future[Completion]{}) {
			e.read.CompleteNotified(taskengine.Ok(Completion{Kind: kind, Err: err}))
			taskengine.Notify(r.eng, e.read)
		}
		if e.write != (taskengine.Future[Completion]{}) {
			e.write.CompleteNotified(taskengine.Ok(Completion{Kind: kind, Err: err}))
			taskengine.Notify(r.eng, e.write)
		}
	}
}

func (r *windowsReactor) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	windows.PostQueuedCompletionStatus(r.port, 0, shutdownKey, nil)
	<-r.done
	return nil
}
