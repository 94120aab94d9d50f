//go:build unix

package ioreactor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/ygrebnov/taskengine"
)

func TestArmReadFiresOnPipeData(t *testing.T) {
	eng := taskengine.New(taskengine.WithWorkers(2))
	defer eng.Close()

	r, err := New(eng)
	require.NoError(t, err)
	defer r.Close()

	fds := make([]int, 2)
	require.NoError(t, unix.Pipe2(fds, unix.O_CLOEXEC|unix.O_NONBLOCK))
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	f := taskengine.NewNotified[Completion]()
	require.NoError(t, r.ArmRead(fds[0], f))

	_, err = unix.Write(fds[1], []byte("x"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return f.State() == taskengine.Completed
	}, time.Second, time.Millisecond)

	assert.Equal(t, CompletionReady, f.Result().Value.Kind)
}

func TestForgetCancelsArmedInterest(t *testing.T) {
	eng := taskengine.New(taskengine.WithWorkers(2))
	defer eng.Close()

	r, err := New(eng)
	require.NoError(t, err)
	defer r.Close()

	fds := make([]int, 2)
	require.NoError(t, unix.Pipe2(fds, unix.O_CLOEXEC|unix.O_NONBLOCK))
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	f := taskengine.NewNotified[Completion]()
	require.NoError(t, r.ArmRead(fds[0], f))

	r.Forget(fds[0])

	_, err = unix.Write(fds[1], []byte("x"))
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.NotEqual(t, taskengine.Completed, f.State())
}

func TestCloseIsIdempotentAndJoins(t *testing.T) {
	eng := taskengine.New(taskengine.WithWorkers(1))
	defer eng.Close()

	r, err := New(eng)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	assert.NoError(t, r.Close())
}

func TestTicketsAcquireReleaseTracksIdle(t *testing.T) {
	tk := NewTickets(2)
	assert.True(t, tk.Idle())

	require.NoError(t, tk.Acquire(context.Background()))
	assert.False(t, tk.Idle())

	require.NoError(t, tk.Acquire(context.Background()))

	done := make(chan struct{})
	go func() {
		tk.WaitIdle()
		close(done)
	}()

	tk.Release()
	select {
	case <-done:
		t.Fatal("WaitIdle returned before the second ticket was released")
	case <-time.After(20 * time.Millisecond):
	}

	tk.Release()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitIdle never returned after both tickets were released")
	}
}

func TestTicketsAcquireRespectsContextCancellation(t *testing.T) {
	tk := NewTickets(1)
	require.NoError(t, tk.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := tk.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
