// Package netlisten implements spec.md §6's listening-socket contract:
// netListen(domain, type, proto, address, errorHandler, acceptor) → Future
// completing on shutdown, built on .../ioreactor for accept readiness.
// Grounded on the teacher's one-constructor-returns-a-handle-with-a-
// lifecycle shape (the teacher's Workers[R] façade): Listen returns both
// a Listener handle (Shutdown) and the completion future scenario 6 names.
package netlisten

import (
	"sync"
	"sync/atomic"

	"github.com/ygrebnov/taskengine"
	"github.com/ygrebnov/taskengine/ioreactor"
)

// Domain/Type/Proto mirror the BSD socket triple spec.md §6 names
// literally, rather than collapsing to a single "network" string, so
// callers can request exactly the socket spec.md's external contract
// describes.
type Domain int

const (
	DomainInet Domain = iota
	DomainInet6
)

type SockType int

const (
	TypeStream SockType = iota
)

type Proto int

const (
	ProtoTCP Proto = iota
)

// ErrorHandler is invoked with any error raised while accepting a
// connection, other than the listener's own orderly shutdown.
type ErrorHandler func(error)

// Acceptor is invoked once per accepted connection with its raw,
// already-non-blocking file descriptor. The acceptor owns the fd from that
// point on (typically wrapping it with ioresource.Take).
type Acceptor func(fd int)

// Listener is the lifecycle handle returned alongside the completion
// future: Shutdown stops future accepts and completes that future.
type Listener struct {
	fd       int
	reactor  ioreactor.Reactor
	shutdown chan struct{}
	once     sync.Once
	closed   atomic.Bool
}

// Shutdown stops the accept loop; the future returned by Listen completes
// without error and no further accepts occur, per spec.md §8 scenario 6.
func (l *Listener) Shutdown() error {
	var err error
	l.once.Do(func() {
		l.closed.Store(true)
		close(l.shutdown)
		l.reactor.Forget(l.fd)
		err = closeSocket(l.fd)
	})
	return err
}

// Listen creates, binds, and listens on a socket matching (domain, typ,
// proto) at address, then launches the accept-loop generator. The returned
// future completes exactly once, when Shutdown is called (or the accept
// loop hits an unrecoverable error), per spec.md §6.
func Listen(
	eng *taskengine.Engine,
	reactor ioreactor.Reactor,
	domain Domain,
	typ SockType,
	proto Proto,
	address string,
	errorHandler ErrorHandler,
	acceptor Acceptor,
) (*Listener, taskengine.Future[struct{}], error) {
	fd, err := listenSocket(domain, typ, proto, address)
	if err != nil {
		return nil, taskengine.Future[struct{}]{}, err
	}

	l := &Listener{fd: fd, reactor: reactor, shutdown: make(chan struct{})}
	f := taskengine.Launch[struct{}](eng, &acceptGen{
		listener:     l,
		errorHandler: errorHandler,
		acceptor:     acceptor,
	})
	return l, f, nil
}

// acceptGen implements the accept loop as a generator: consume a pending
// reactor completion, attempt a non-blocking accept, arm the reactor on
// would-block, and check for shutdown on every iteration — the same shape
// as ioresource's readGen/writeGen, applied to accept(2) instead of
// read(2)/write(2).
type acceptGen struct {
	listener     *Listener
	errorHandler ErrorHandler
	acceptor     Acceptor

	pending  bool
	awaiting taskengine.Future[ioreactor.Completion]
	done     bool
}

func (g *acceptGen) Resume(_ *taskengine.Engine) taskengine.Resume[struct{}] {
	for {
		select {
		case <-g.listener.shutdown:
			g.done = true
			return taskengine.Produced[struct{}](taskengine.Ok(struct{}{}))
		default:
		}

		if g.pending {
			g.pending = false
			c := g.awaiting.Result().Value
			if c.Kind == ioreactor.CompletionError && !g.listener.closed.Load() {
				g.errorHandler(c.Err)
			}
			if g.listener.closed.Load() {
				g.done = true
				return taskengine.Produced[struct{}](taskengine.Ok(struct{}{}))
			}
		}

		connFd, err := tryAccept(g.listener.fd)
		if err == errAcceptWouldBlock {
			g.awaiting = taskengine.NewNotified[ioreactor.Completion]()
			if armErr := g.listener.reactor.ArmRead(g.listener.fd, g.awaiting); armErr != nil {
				if !g.listener.closed.Load() {
					g.errorHandler(armErr)
				}
				g.done = true
				return taskengine.Produced[struct{}](taskengine.Ok(struct{}{}))
			}
			g.pending = true
			return taskengine.Awaiting[struct{}](g.awaiting)
		}
		if err != nil {
			if g.listener.closed.Load() {
				g.done = true
				return taskengine.Produced[struct{}](taskengine.Ok(struct{}{}))
			}
			g.errorHandler(err)
			continue
		}

		g.acceptor(connFd)
	}
}

func (g *acceptGen) Done() bool { return g.done }
