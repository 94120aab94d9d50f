package ctrlc

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/taskengine"
)

func TestMain(m *testing.M) {
	code := m.Run()
	Un()
	os.Exit(code)
}

func TestOnFiresOncePerInterrupt(t *testing.T) {
	eng := taskengine.New(taskengine.WithWorkers(2))
	defer eng.Close()
	defer Un()

	f := On(eng)
	require.NotEqual(t, taskengine.Completed, f.State())

	self, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, self.Signal(syscall.SIGINT))

	require.Eventually(t, func() bool {
		return f.State() == taskengine.Completed
	}, time.Second, time.Millisecond)

	assert.True(t, f.Result().Present)
}

func TestOnMustBeReRegisteredAfterEachInterrupt(t *testing.T) {
	eng := taskengine.New(taskengine.WithWorkers(2))
	defer eng.Close()
	defer Un()

	first := On(eng)

	self, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, self.Signal(syscall.SIGINT))

	require.Eventually(t, func() bool {
		return first.State() == taskengine.Completed
	}, time.Second, time.Millisecond)

	second := On(eng)
	assert.NotEqual(t, taskengine.Completed, second.State())

	require.NoError(t, self.Signal(syscall.SIGINT))
	require.Eventually(t, func() bool {
		return second.State() == taskengine.Completed
	}, time.Second, time.Millisecond)
}

func TestUnStopsFutureDelivery(t *testing.T) {
	eng := taskengine.New(taskengine.WithWorkers(2))
	defer eng.Close()

	f := On(eng)
	Un()

	self, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, self.Signal(syscall.SIGINT))

	time.Sleep(50 * time.Millisecond)
	assert.NotEqual(t, taskengine.Completed, f.State())
}

func TestUnIsIdempotent(t *testing.T) {
	Un()
	assert.NotPanics(t, Un)
}
