package lockfree

import (
	"errors"
	"fmt"
	"math/bits"
	"sync/atomic"

	"fortio.org/safecast"
)

// ErrFull is returned by ArrayQueue.Push when every slot is occupied.
var ErrFull = errors.New("lockfree: queue full")

// cacheLine separates the producer and consumer cursors so they do not share a line.
const cacheLine = 64

type slot[T any] struct {
	// stamp == pos     : slot is free for the producer claiming pos
	// stamp == pos + 1 : slot holds the value written at pos
	stamp atomic.Uint64
	val   T
}

// ArrayQueue is a bounded multi-producer multi-consumer FIFO.
//
// Cursors are stamps: the low bits index the buffer and the high bits
// count laps. A lap is the next power of two above the capacity, so a
// stamp of a free slot never equals the stamp of a full one, even when
// the capacity is 1.
//
// Push and Pop never block and never allocate. A producer that loses a race
// for a slot retries with the new cursor; it never waits for another
// goroutine (or an interrupted context) to make progress.
type ArrayQueue[T any] struct {
	head atomic.Uint64
	_    [cacheLine - 8]byte
	tail atomic.Uint64
	_    [cacheLine - 8]byte
	cap  uint64
	lap  uint64 // one lap in stamp units
	buf  []slot[T]
}

// NewArrayQueue allocates a queue holding at most capacity values.
func NewArrayQueue[T any](capacity int) (*ArrayQueue[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("lockfree: capacity must be positive, got %d", capacity)
	}
	c, err := safecast.Conv[uint64](capacity)
	if err != nil {
		return nil, fmt.Errorf("lockfree: capacity: %w", err)
	}
	q := &ArrayQueue[T]{
		cap: c,
		lap: 1 << bits.Len64(c),
		buf: make([]slot[T], capacity),
	}
	for i := range q.buf {
		q.buf[i].stamp.Store(uint64(i))
	}
	return q, nil
}

// MustArrayQueue is NewArrayQueue for capacities fixed at compile time.
func MustArrayQueue[T any](capacity int) *ArrayQueue[T] {
	q, err := NewArrayQueue[T](capacity)
	if err != nil {
		panic(err)
	}
	return q
}

// advance returns the stamp after pos, wrapping to the next lap at the end
// of the buffer.
func (q *ArrayQueue[T]) advance(pos uint64) uint64 {
	idx, lap := pos&(q.lap-1), pos&^(q.lap-1)
	if idx+1 < q.cap {
		return pos + 1
	}
	return lap + q.lap
}

// Push appends v, or returns ErrFull leaving the queue untouched.
func (q *ArrayQueue[T]) Push(v T) error {
	tail := q.tail.Load()
	for {
		s := &q.buf[tail&(q.lap-1)]
		stamp := s.stamp.Load()
		switch {
		case stamp == tail:
			if q.tail.CompareAndSwap(tail, q.advance(tail)) {
				s.val = v
				s.stamp.Store(tail + 1)
				return nil
			}
		case stamp+q.lap == tail+1:
			// the slot still holds the value from the previous lap
			if q.head.Load()+q.lap == tail {
				return ErrFull
			}
		}
		tail = q.tail.Load()
	}
}

// Pop removes the oldest value. ok is false when the queue is empty.
func (q *ArrayQueue[T]) Pop() (v T, ok bool) {
	head := q.head.Load()
	for {
		s := &q.buf[head&(q.lap-1)]
		stamp := s.stamp.Load()
		switch {
		case stamp == head+1:
			if q.head.CompareAndSwap(head, q.advance(head)) {
				v = s.val
				var zero T
				s.val = zero
				s.stamp.Store(head + q.lap)
				return v, true
			}
		case stamp == head:
			if q.tail.Load() == head {
				return v, false
			}
		}
		head = q.head.Load()
	}
}

// Len reports the number of queued values. Under concurrent use the result
// is a snapshot that may already be stale.
func (q *ArrayQueue[T]) Len() int {
	for {
		tail := q.tail.Load()
		head := q.head.Load()
		if q.tail.Load() != tail {
			continue
		}
		hi, ti := head&(q.lap-1), tail&(q.lap-1)
		var n uint64
		switch {
		case hi < ti:
			n = ti - hi
		case hi > ti:
			n = q.cap - hi + ti
		case tail == head:
			n = 0
		default:
			n = q.cap
		}
		return int(n) //nolint:gosec // bounded by cap, which came from an int
	}
}

// IsEmpty reports whether Len would return 0.
func (q *ArrayQueue[T]) IsEmpty() bool {
	return q.Len() == 0
}

// IsFull reports whether Len would return Cap.
func (q *ArrayQueue[T]) IsFull() bool {
	return q.Len() == q.Cap()
}

// Cap returns the fixed capacity.
func (q *ArrayQueue[T]) Cap() int {
	return len(q.buf)
}
