package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the most recent events in memory. It is the default
// sink: a kernel run leaves its last moments behind for a dump on exit,
// and tests read warnings back from it.
type RingTracer struct {
	level Level

	mu      sync.RWMutex
	buf     []Event
	next    int    // slot for the next event
	stored  int    // live events, at most len(buf)
	evicted uint64 // events overwritten after wrapping
}

// NewRingTracer returns a ring holding up to capacity events (4096 when
// capacity is not positive).
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{buf: make([]Event, capacity), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if !t.level.admits(ev) {
		return
	}
	e := *ev
	if e.Seq == 0 {
		e.Seq = NextSeq()
	}

	t.mu.Lock()
	t.buf[t.next] = e
	t.next = (t.next + 1) % len(t.buf)
	if t.stored < len(t.buf) {
		t.stored++
	} else {
		t.evicted++
	}
	t.mu.Unlock()
}

// Snapshot copies the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Event, 0, t.stored)
	start := t.next - t.stored
	if start < 0 {
		start += len(t.buf)
	}
	for i := 0; i < t.stored; i++ {
		out = append(out, t.buf[(start+i)%len(t.buf)])
	}
	return out
}

// Evicted returns how many events were overwritten.
func (t *RingTracer) Evicted() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.evicted
}

// Warnings returns the stored warnings, oldest first.
func (t *RingTracer) Warnings() []Event {
	var out []Event
	for _, ev := range t.Snapshot() {
		if ev.Kind == KindWarning {
			out = append(out, ev)
		}
	}
	return out
}

// Dump writes the stored events to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
