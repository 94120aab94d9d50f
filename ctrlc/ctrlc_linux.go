//go:build linux

package ctrlc

import "golang.org/x/sys/unix"

// init blocks SIGINT in this process's signal mask before any engine worker
// is spawned, per spec.md §6: "on Unix, the interrupt signal must be blocked
// in the process-wide signal mask before any worker thread is spawned."
// Package init runs before any caller can construct an Engine, so the
// ordering constraint holds unconditionally. Delivery itself still happens
// through os/signal in ctrlc.go, which installs its own handler independent
// of this mask; blocking SIGINT here only prevents a worker goroutine's
// underlying OS thread from being torn down by the default SIGINT
// disposition in the narrow window before signal.Notify takes effect.
func init() {
	var set unix.Sigset_t
	set.Val[0] |= 1 << (uint(unix.SIGINT) - 1)
	_ = unix.PthreadSigmask(unix.SIG_BLOCK, &set, nil)
}
