//go:build unix

package ioreactor

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/ygrebnov/taskengine"
)

// unixReactor is an edge-triggered, one-shot epoll poller (spec.md §4.5's
// Unix paragraph): each registered fd's user data identifies the owning
// waiter entry; a stop pipe unblocks the poll loop on shutdown.
type unixReactor struct {
	eng  *taskengine.Engine
	epfd int

	stopR int
	stopW int

	mu      sync.Mutex
	waiters map[int]*waiterEntry
	closed  bool

	tickets *Tickets

	done chan struct{}
}

type waiterEntry struct {
	read  taskengine.Future[Completion]
	write taskengine.Future[Completion]
}

func newPlatformReactor(eng *taskengine.Engine) (Reactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}

	fds := make([]int, 2)
	if err := unix.Pipe2(fds, unix.O_CLOEXEC|unix.O_NONBLOCK); err != nil {
		unix.Close(epfd)
		return nil, err
	}

	r := &unixReactor{
		eng:     eng,
		epfd:    epfd,
		stopR:   fds[0],
		stopW:   fds[1],
		waiters: make(map[int]*waiterEntry),
		tickets: NewTickets(1 << 20),
		done:    make(chan struct{}),
	}

	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, r.stopR, &unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(r.stopR),
	}); err != nil {
		unix.Close(epfd)
		unix.Close(r.stopR)
		unix.Close(r.stopW)
		return nil, err
	}

	go r.run()
	return r, nil
}

func (r *unixReactor) entry(fd int) *waiterEntry {
	e, ok := r.waiters[fd]
	if !ok {
		e = &waiterEntry{}
		r.waiters[fd] = e
	}
	return e
}

func (r *unixReactor) arm(fd int, set func(e *waiterEntry)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return taskengine.ErrEngineClosed
	}

	_, existed := r.waiters[fd]
	e := r.entry(fd)
	set(e)

	var want uint32
	if e.read != (taskengine.Future[Completion]{}) {
		want |= unix.EPOLLIN
	}
	if e.write != (taskengine.Future[Completion]{}) {
		want |= unix.EPOLLOUT
	}
	want |= unix.EPOLLONESHOT

	op := unix.EPOLL_CTL_MOD
	if !existed {
		op = unix.EPOLL_CTL_ADD
	}
	ev := &unix.EpollEvent{Events: want, Fd: int32(fd)}
	err := unix.EpollCtl(r.epfd, op, fd, ev)
	if err == unix.EEXIST {
		// fd is still registered from an earlier one-shot interest that
		// already fired (dispatch dropped its waiter entry): re-enable it.
		err = unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, ev)
	}
	return err
}

func (r *unixReactor) ArmRead(fd int, future taskengine.Future[Completion]) error {
	return r.arm(fd, func(e *waiterEntry) { e.read = future })
}

func (r *unixReactor) ArmWrite(fd int, future taskengine.Future[Completion]) error {
	return r.arm(fd, func(e *waiterEntry) { e.write = future })
}

func (r *unixReactor) Forget(fd int) {
	r.mu.Lock()
	delete(r.waiters, fd)
	r.mu.Unlock()
	unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (r *unixReactor) Tickets() *Tickets { return r.tickets }

func (r *unixReactor) run() {
	events := make([]unix.EpollEvent, 64)
	for {
		n, err := unix.EpollWait(r.epfd, events, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			if fd == r.stopR {
				close(r.done)
				unix.Close(r.epfd)
				unix.Close(r.stopR)
				unix.Close(r.stopW)
				return
			}
			r.dispatch(fd, events[i].Events)
		}
	}
}

func (r *unixReactor) dispatch(fd int, mask uint32) {
	r.mu.Lock()
	e, ok := r.waiters[fd]
	if ok {
		delete(r.waiters, fd)
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	kind := CompletionReady
	if mask&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
		kind = CompletionError
	}

	if mask&(unix.EPOLLIN|unix.EPOLLERR|unix.EPOLLHUP) != 0 && e.read != (taskengine.Future[Completion]{}) {
		e.read.CompleteNotified(taskengine.Ok(Completion{Kind: kind}))
		taskengine.Notify(r.eng, e.read)
	}
	if mask&(unix.EPOLLOUT|unix.EPOLLERR|unix.EPOLLHUP) != 0 && e.write != (taskengine.Future[Completion]{}) {
		e.write.CompleteNotified(taskengine.Ok(Completion{Kind: kind}))
		taskengine.Notify(r.eng, e.write)
	}
}

func (r *unixReactor) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	unix.Write(r.stopW, []byte{0})
	<-r.done
	return nil
}
