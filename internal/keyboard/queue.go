package keyboard

import (
	"errors"
	"fmt"
	"sync/atomic"

	"ember/internal/lockfree"
	"ember/internal/task"
	"ember/internal/trace"
)

// DefaultQueueCapacity is the scancode buffer size used when Init gets zero.
const DefaultQueueCapacity = 100

// ErrStreamTaken is returned when a second Stream is requested from a Queue.
var ErrStreamTaken = errors.New("keyboard: scancode stream already taken")

type queueState struct {
	fifo   *lockfree.ArrayQueue[byte]
	tracer trace.Tracer
}

// Queue is the interrupt-safe scancode buffer plus the wake registry of its
// single consumer. The zero value is uninitialised; every method except Init
// and Initialized panics with lockfree.ErrUninitialized until Init succeeds.
type Queue struct {
	state    lockfree.OnceCell[queueState]
	waker    task.AtomicWaker
	taken    atomic.Bool
	accepted atomic.Uint64
	dropped  atomic.Uint64
}

// Scancodes is the kernel's scancode queue, fed by the IRQ1 handler.
var Scancodes Queue

// AddScancode submits one raw byte to Scancodes. Interrupt handlers only.
func AddScancode(b byte) {
	Scancodes.Add(b)
}

// Init allocates the buffer. It may be called once; later calls return
// lockfree.ErrAlreadyInitialized.
func (q *Queue) Init(capacity int, tracer trace.Tracer) error {
	if capacity == 0 {
		capacity = DefaultQueueCapacity
	}
	fifo, err := lockfree.NewArrayQueue[byte](capacity)
	if err != nil {
		return fmt.Errorf("keyboard: %w", err)
	}
	if tracer == nil {
		tracer = trace.Nop
	}
	return q.state.TryInit(func() *queueState {
		return &queueState{fifo: fifo, tracer: tracer}
	})
}

// Initialized reports whether Init has succeeded.
func (q *Queue) Initialized() bool {
	return q.state.IsInitialized()
}

// Add pushes b and wakes the registered consumer. When the buffer is full b
// is dropped and a warning is traced; the interrupt handler carries on.
//
// Add never blocks and never allocates unless tracing is enabled.
func (q *Queue) Add(b byte) {
	st := q.state.MustGet()
	if err := st.fifo.Push(b); err != nil {
		q.dropped.Add(1)
		if st.tracer.Enabled() {
			trace.Warn(st.tracer, trace.ScopeInterrupt, "scancode queue full",
				fmt.Sprintf("dropping keyboard input 0x%02x", b))
		}
	} else {
		q.accepted.Add(1)
	}
	q.waker.Wake()
}

// Stream returns the queue's only consumer handle.
func (q *Queue) Stream() (*Stream, error) {
	q.state.MustGet()
	if !q.taken.CompareAndSwap(false, true) {
		return nil, ErrStreamTaken
	}
	return &Stream{q: q}, nil
}

// Len returns the number of buffered scancodes.
func (q *Queue) Len() int { return q.state.MustGet().fifo.Len() }

// Cap returns the buffer capacity.
func (q *Queue) Cap() int { return q.state.MustGet().fifo.Cap() }

// Accepted counts bytes that made it into the buffer.
func (q *Queue) Accepted() uint64 { return q.accepted.Load() }

// Dropped counts bytes discarded because the buffer was full.
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }
