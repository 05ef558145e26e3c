package keyboard

import (
	"sync/atomic"

	"ember/internal/task"
)

// StreamStats counts how PollNext calls were resolved.
type StreamStats struct {
	FastPath  uint64 `json:"fast_path"` // byte was already buffered
	Recheck   uint64 `json:"recheck"`   // byte arrived between the first check and registration
	Pending   uint64 `json:"pending"`   // nothing buffered, waker registered
	Delivered uint64 `json:"delivered"` // FastPath + Recheck
}

// Stream is the consumer side of a Queue.
type Stream struct {
	q *Queue

	fast, recheck, pending atomic.Uint64

	// afterRegister runs between registration and the re-check (tests only).
	afterRegister func()
}

// PollNext returns the next scancode, or Pending after arranging for the
// task behind cx to be woken by the next Add.
func (s *Stream) PollNext(cx *task.Context) (byte, task.Poll) {
	fifo := s.q.state.MustGet().fifo

	if b, ok := fifo.Pop(); ok {
		s.fast.Add(1)
		return b, task.Ready
	}

	s.q.waker.Register(cx.Waker())
	if s.afterRegister != nil {
		s.afterRegister()
	}

	if b, ok := fifo.Pop(); ok {
		s.q.waker.Take()
		s.recheck.Add(1)
		return b, task.Ready
	}
	s.pending.Add(1)
	return 0, task.Pending
}

// Stats returns the resolution counters.
func (s *Stream) Stats() StreamStats {
	fast, re := s.fast.Load(), s.recheck.Load()
	return StreamStats{
		FastPath:  fast,
		Recheck:   re,
		Pending:   s.pending.Load(),
		Delivered: fast + re,
	}
}
