// Package ioresource implements the non-blocking read/write surface of
// spec.md §4.6: an async handle with two primitive operations, each backed
// by a generator that consumes a pending reactor completion, attempts a
// non-blocking syscall, and arms the reactor when the attempt would block.
package ioresource

import (
	"context"
	"errors"

	"github.com/ygrebnov/taskengine"
	"github.com/ygrebnov/taskengine/ioreactor"
)

// errWouldBlock is returned by the platform tryRead/tryWrite helpers
// (resource_unix.go / resource_windows.go) when a non-blocking attempt
// could not complete immediately.
var errWouldBlock = errors.New("ioresource: operation would block")

// Resource is an async file/socket handle. Exactly one read or one write
// generator may be in flight at a time (enforced by callers, not by
// Resource). A resource holds no engine-interrupt future of its own: each
// time a read or write generator arms the reactor it creates a fresh
// notified future for that one wait.
type Resource struct {
	eng     *taskengine.Engine
	reactor ioreactor.Reactor
	fd      int
}

// Take wraps an already-open fd as a Resource, acquiring one ticket from
// the reactor's ticket protocol (spec.md §4.6 last paragraph, §6 "taek
// (handle)") for the lifetime of the handle. Callers must call Close to
// release the ticket and the underlying fd.
func Take(ctx context.Context, eng *taskengine.Engine, reactor ioreactor.Reactor, fd int) (*Resource, error) {
	if err := setNonblock(fd); err != nil {
		return nil, err
	}
	if err := reactor.Tickets().Acquire(ctx); err != nil {
		return nil, err
	}
	return &Resource{eng: eng, reactor: reactor, fd: fd}, nil
}

// Close releases the underlying file descriptor and its ticket. It does
// not wait for any in-flight operation; callers must not Close while a
// Read/Write future is unresolved.
func (r *Resource) Close() error {
	r.reactor.Forget(r.fd)
	r.reactor.Tickets().Release()
	return closeFD(r.fd)
}

// Read launches a future reading up to n bytes (n == 0 reads until EOD),
// per spec.md §4.6/§8: "a read requesting 0 bytes reads until EOD; a read
// requesting N returns exactly N unless EOD is reached first."
func (r *Resource) Read(n int) taskengine.Future[[]byte] {
	return taskengine.Launch[[]byte](r.eng, &readGen{res: r, want: n})
}

// Write launches a future writing all of b, returning once every byte has
// been accepted by the OS (or an error/cancellation terminates early).
func (r *Resource) Write(b []byte) taskengine.Future[struct{}] {
	return taskengine.Launch[struct{}](r.eng, &writeGen{res: r, data: b})
}

// readGen implements spec.md §4.6 steps 1-3 for reads.
type readGen struct {
	res     *Resource
	want    int // 0 = until EOD
	buf     []byte
	scratch [32 * 1024]byte

	pending  bool
	awaiting taskengine.Future[ioreactor.Completion]
	done     bool
}

func (g *readGen) Resume(_ *taskengine.Engine) taskengine.Resume[[]byte] {
	for {
		if g.pending {
			g.pending = false
			c := g.awaiting.Result().Value
			switch c.Kind {
			case ioreactor.CompletionError:
				g.done = true
				return taskengine.Produced[[]byte](taskengine.ErrResult[[]byte](c.Err))
			case ioreactor.CompletionCancelled:
				g.done = true
				return taskengine.Produced[[]byte](taskengine.ErrResult[[]byte](taskengine.ErrCancelled))
			}
		}

		chunk := g.scratch[:]
		if g.want != 0 && g.want-len(g.buf) < len(chunk) {
			chunk = chunk[:g.want-len(g.buf)]
		}
		n, err := tryRead(g.res.fd, chunk)
		if err == errWouldBlock {
			g.awaiting = taskengine.NewNotified[ioreactor.Completion]()
			if armErr := g.res.reactor.ArmRead(g.res.fd, g.awaiting); armErr != nil {
				g.done = true
				return taskengine.Produced[[]byte](taskengine.ErrResult[[]byte](armErr))
			}
			g.pending = true
			return taskengine.Awaiting[[]byte](g.awaiting)
		}
		if err != nil {
			g.done = true
			return taskengine.Produced[[]byte](taskengine.ErrResult[[]byte](err))
		}
		if n == 0 { // EOF
			g.done = true
			return taskengine.Produced[[]byte](taskengine.Ok(g.buf))
		}

		g.buf = append(g.buf, g.scratch[:n]...)
		if g.want != 0 && len(g.buf) >= g.want {
			g.done = true
			return taskengine.Produced[[]byte](taskengine.Ok(g.buf[:g.want]))
		}
		// Attempt completed fully but more is wanted (or unbounded read):
		// loop and try again non-blocking, per spec.md §4.6 step 2.
	}
}

func (g *readGen) Done() bool { return g.done }

// writeGen implements spec.md §4.6 steps 1-3 for writes.
type writeGen struct {
	res    *Resource
	data   []byte
	offset int

	pending  bool
	awaiting taskengine.Future[ioreactor.Completion]
	done     bool
}

func (g *writeGen) Resume(_ *taskengine.Engine) taskengine.Resume[struct{}] {
	for {
		if g.pending {
			g.pending = false
			c := g.awaiting.Result().Value
			switch c.Kind {
			case ioreactor.CompletionError:
				g.done = true
				return taskengine.Produced[struct{}](taskengine.ErrResult[struct{}](c.Err))
			case ioreactor.CompletionCancelled:
				g.done = true
				return taskengine.Produced[struct{}](taskengine.ErrResult[struct{}](taskengine.ErrCancelled))
			}
		}

		if g.offset >= len(g.data) {
			g.done = true
			return taskengine.Produced[struct{}](taskengine.Ok(struct{}{}))
		}

		n, err := tryWrite(g.res.fd, g.data[g.offset:])
		if err == errWouldBlock {
			g.awaiting = taskengine.NewNotified[ioreactor.Completion]()
			if armErr := g.res.reactor.ArmWrite(g.res.fd, g.awaiting); armErr != nil {
				g.done = true
				return taskengine.Produced[struct{}](taskengine.ErrResult[struct{}](armErr))
			}
			g.pending = true
			return taskengine.Awaiting[struct{}](g.awaiting)
		}
		if err != nil {
			g.done = true
			return taskengine.Produced[struct{}](taskengine.ErrResult[struct{}](err))
		}

		g.offset += n
		// Loop: re-attempt immediately, per spec.md §4.6 step 2.
	}
}

func (g *writeGen) Done() bool { return g.done }
