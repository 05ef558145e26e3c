package task

import (
	"errors"
	"sync/atomic"

	"ember/internal/lockfree"
)

// ErrTaskQueueFull is the panic value raised when a wake finds the ready
// queue at capacity. Dropping the wake would strand the task forever.
var ErrTaskQueueFull = errors.New("task: ready queue full")

// TaskWaker is the capability "mark task id ready". It is shared between the
// executor's waker cache and whatever the task handed it to.
type TaskWaker struct {
	id    TaskID
	ready *lockfree.ArrayQueue[TaskID]
}

func newTaskWaker(id TaskID, ready *lockfree.ArrayQueue[TaskID]) *TaskWaker {
	return &TaskWaker{id: id, ready: ready}
}

// Wake pushes the task's ID into the ready queue. It panics with
// ErrTaskQueueFull if the queue has no free slot.
func (w *TaskWaker) Wake() {
	if err := w.ready.Push(w.id); err != nil {
		panic(ErrTaskQueueFull)
	}
}

// TaskID returns the ID this waker marks ready.
func (w *TaskWaker) TaskID() TaskID { return w.id }

type wakerSlot struct {
	w Waker
}

// AtomicWaker is a single-slot waker registry shared between one consumer
// (registering from scheduler context) and any number of producers (waking
// from interrupt context). Registering replaces the previous waker.
//
// The zero value is empty and ready to use.
type AtomicWaker struct {
	slot atomic.Pointer[wakerSlot]
}

// Register stores w as the waker to call on the next Wake. Re-registering
// the *TaskWaker already stored is a no-op; other wakers are always stored,
// since their dynamic type need not be comparable.
func (a *AtomicWaker) Register(w Waker) {
	if tw, ok := w.(*TaskWaker); ok {
		if cur := a.slot.Load(); cur != nil {
			if prev, ok := cur.w.(*TaskWaker); ok && prev == tw {
				return
			}
		}
	}
	a.slot.Store(&wakerSlot{w: w})
}

// Take removes and returns the registered waker, or nil.
func (a *AtomicWaker) Take() Waker {
	if s := a.slot.Swap(nil); s != nil {
		return s.w
	}
	return nil
}

// Wake takes the registered waker, if any, and calls it. Waking an empty
// registry does nothing.
func (a *AtomicWaker) Wake() {
	if w := a.Take(); w != nil {
		w.Wake()
	}
}

// Registered reports whether a waker is currently stored.
func (a *AtomicWaker) Registered() bool {
	return a.slot.Load() != nil
}
