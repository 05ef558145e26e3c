package trace

import (
	"io"
	"sync"
)

// StreamTracer formats each admitted event and writes it straight away.
// Write errors are counted, not returned: a broken trace sink must not
// stop an interrupt handler.
type StreamTracer struct {
	level  Level
	format Format

	mu     sync.Mutex
	w      io.Writer
	failed uint64
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{w: w, level: level, format: format}
}

func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.admits(ev) {
		return
	}
	if ev.Seq == 0 {
		ev.Seq = NextSeq()
	}
	line := FormatEvent(ev, t.format)

	t.mu.Lock()
	if _, err := t.w.Write(line); err != nil {
		t.failed++
	}
	t.mu.Unlock()
}

// WriteErrors returns how many events could not be written.
func (t *StreamTracer) WriteErrors() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed
}

// Flush forwards to the writer's Flush, if any.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes, then closes the writer unless it is stderr.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if _, ok := t.w.(stderr); ok {
		return nil
	}
	if c, ok := t.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
