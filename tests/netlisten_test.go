//go:build unix

package tests

import (
	"testing"
	"time"

	"github.com/ygrebnov/taskengine"
	"github.com/ygrebnov/taskengine/ioreactor"
	"github.com/ygrebnov/taskengine/netlisten"
)

// TestListenerShutdownCompletesWithoutError is spec.md §8 scenario 6: start
// a TCP listener on loopback, shutdown(), the listen future completes
// without error, no further accepts occur.
func TestListenerShutdownCompletesWithoutError(t *testing.T) {
	eng := taskengine.New(taskengine.WithWorkers(2))
	defer eng.Close()

	reactor, err := ioreactor.New(eng)
	if err != nil {
		t.Fatalf("ioreactor.New: %v", err)
	}
	defer reactor.Close()

	l, f, err := netlisten.Listen(
		eng, reactor,
		netlisten.DomainInet, netlisten.TypeStream, netlisten.ProtoTCP,
		"127.0.0.1:0",
		func(error) {},
		func(fd int) {},
	)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}

	if err := l.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for f.State() != taskengine.Completed && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if f.State() != taskengine.Completed {
		t.Fatal("listen future never completed after shutdown")
	}
	if f.Result().Err != nil {
		t.Fatalf("listen future completed with error: %v", f.Result().Err)
	}
}
