package ioresource

import (
	"bytes"

	"github.com/ygrebnov/taskengine"
	"github.com/ygrebnov/taskengine/combinators"
)

const defaultChunk = 4096

// BufferedReader is the prefetch-buffer L2 surface named in spec.md §4.6's
// last paragraph: Read, Peek, and delimiter-terminated reads on top of the
// raw Resource.Read primitive. It is not itself a Generator — it is a
// convenience client, built on combinators.Await, that blocks the calling
// goroutine while the underlying reads proceed through the engine.
type BufferedReader struct {
	res *Resource
	buf []byte
	eof bool
}

// NewBufferedReader wraps res with a prefetch buffer.
func NewBufferedReader(res *Resource) *BufferedReader {
	return &BufferedReader{res: res}
}

// fillAtLeast blocks until at least n bytes are buffered or EOD is reached.
func (b *BufferedReader) fillAtLeast(eng *taskengine.Engine, n int) error {
	for !b.eof && len(b.buf) < n {
		r := combinators.Await(eng, b.res.Read(defaultChunk))
		if r.Err != nil {
			return r.Err
		}
		b.buf = append(b.buf, r.Value...)
		if len(r.Value) < defaultChunk {
			b.eof = true
		}
	}
	return nil
}

// Read returns up to n bytes (n == 0 reads until EOD, draining the buffer
// and the underlying resource), matching spec.md §8's boundary behavior.
func (b *BufferedReader) Read(eng *taskengine.Engine, n int) ([]byte, error) {
	if n == 0 {
		for !b.eof {
			if err := b.fillAtLeast(eng, len(b.buf)+1); err != nil {
				return nil, err
			}
		}
		out := b.buf
		b.buf = nil
		return out, nil
	}

	if err := b.fillAtLeast(eng, n); err != nil {
		return nil, err
	}
	take := n
	if take > len(b.buf) {
		take = len(b.buf)
	}
	out := append([]byte(nil), b.buf[:take]...)
	b.buf = b.buf[take:]
	return out, nil
}

// Peek returns up to n bytes without consuming them.
func (b *BufferedReader) Peek(eng *taskengine.Engine, n int) ([]byte, error) {
	if err := b.fillAtLeast(eng, n); err != nil {
		return nil, err
	}
	take := n
	if take > len(b.buf) {
		take = len(b.buf)
	}
	return append([]byte(nil), b.buf[:take]...), nil
}

// ReadUntil returns bytes up to and including the first occurrence of
// delim. It returns taskengine.ErrProtocol if EOD is reached before delim
// is found (spec.md §7: "Protocol error (I/O L2 only): malformed buffered
// read (e.g., delimiter not found before EOF)").
func (b *BufferedReader) ReadUntil(eng *taskengine.Engine, delim byte) ([]byte, error) {
	for {
		if idx := bytes.IndexByte(b.buf, delim); idx >= 0 {
			out := append([]byte(nil), b.buf[:idx+1]...)
			b.buf = b.buf[idx+1:]
			return out, nil
		}
		if b.eof {
			return nil, taskengine.ErrProtocol
		}
		if err := b.fillAtLeast(eng, len(b.buf)+1); err != nil {
			return nil, err
		}
	}
}

// BufferedWriter is the deferred-writer L2 surface: it accumulates writes
// and flushes once bufCap is reached, exposing an eod future that
// completes after Close's final flush.
type BufferedWriter struct {
	res    *Resource
	buf    []byte
	bufCap int
}

// NewBufferedWriter wraps res with a write-behind buffer of bufCap bytes.
func NewBufferedWriter(res *Resource, bufCap int) *BufferedWriter {
	return &BufferedWriter{res: res, bufCap: bufCap}
}

// Write appends b to the pending buffer, flushing synchronously once the
// buffer reaches its capacity.
func (w *BufferedWriter) Write(eng *taskengine.Engine, b []byte) error {
	w.buf = append(w.buf, b...)
	if len(w.buf) >= w.bufCap {
		return w.flush(eng)
	}
	return nil
}

func (w *BufferedWriter) flush(eng *taskengine.Engine) error {
	if len(w.buf) == 0 {
		return nil
	}
	r := combinators.Await(eng, w.res.Write(w.buf))
	w.buf = w.buf[:0]
	return r.Err
}

// Close flushes any remaining buffered bytes and returns a future that
// completes once that final flush finishes — the "eod" future named in
// spec.md §4.6.
func (w *BufferedWriter) Close(eng *taskengine.Engine) taskengine.Future[struct{}] {
	eod := taskengine.NewNotified[struct{}]()
	go func() {
		if err := w.flush(eng); err != nil {
			eod.CompleteNotified(taskengine.ErrResult[struct{}](err))
		} else {
			eod.CompleteNotified(taskengine.Ok(struct{}{}))
		}
		taskengine.Notify(eng, eod)
	}()
	return eod
}
