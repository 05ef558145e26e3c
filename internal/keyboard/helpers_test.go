package keyboard

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"ember/internal/trace"
)

type countingWaker struct {
	n atomic.Int32
}

func (w *countingWaker) Wake() { w.n.Add(1) }

func newQueue(t *testing.T, capacity int, tracer trace.Tracer) *Queue {
	t.Helper()
	q := &Queue{}
	require.NoError(t, q.Init(capacity, tracer))
	return q
}

// drainQueue pops every buffered byte, oldest first.
func drainQueue(q *Queue) []byte {
	fifo := q.state.MustGet().fifo
	var out []byte
	for {
		b, ok := fifo.Pop()
		if !ok {
			return out
		}
		out = append(out, b)
	}
}

func newStream(t *testing.T, q *Queue) *Stream {
	t.Helper()
	s, err := q.Stream()
	require.NoError(t, err)
	return s
}

// fakeTerminal records echoed text and cursor moves.
type fakeTerminal struct {
	mu    sync.Mutex
	text  strings.Builder
	moves []string
}

func (f *fakeTerminal) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text.Write(p)
}

func (f *fakeTerminal) move(dir string) {
	f.mu.Lock()
	f.moves = append(f.moves, dir)
	f.mu.Unlock()
}

func (f *fakeTerminal) CursorLeft()  { f.move("left") }
func (f *fakeTerminal) CursorRight() { f.move("right") }
func (f *fakeTerminal) CursorUp()    { f.move("up") }
func (f *fakeTerminal) CursorDown()  { f.move("down") }

func (f *fakeTerminal) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text.String()
}

type fakeStdin struct {
	buf   []byte
	limit int
}

func (f *fakeStdin) Push(b byte) bool {
	if f.limit > 0 && len(f.buf) >= f.limit {
		return false
	}
	f.buf = append(f.buf, b)
	return true
}

// idleCPU satisfies task.CPU for tests that only call RunReady.
type idleCPU struct{}

func (idleCPU) DisableInterrupts() {}
func (idleCPU) EnableInterrupts()  {}
func (idleCPU) EnableAndHalt()     {}

func typeBytes(s string) []byte {
	var out []byte
	for _, r := range s {
		st, ok := StrokeFor(r)
		if !ok {
			panic("no stroke for " + string(r))
		}
		out = append(out, st.Scancodes()...)
	}
	return out
}
