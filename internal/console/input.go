package console

import (
	"ember/internal/lockfree"
)

// DefaultInputCapacity is the stdin buffer size used when none is given.
const DefaultInputCapacity = 256

// InputBuffer holds bytes typed at the keyboard until a reader drains them.
// Push never blocks; a full buffer rejects the byte.
type InputBuffer struct {
	buf *lockfree.ArrayQueue[byte]
}

// NewInputBuffer returns a buffer holding up to capacity bytes.
func NewInputBuffer(capacity int) (*InputBuffer, error) {
	if capacity == 0 {
		capacity = DefaultInputCapacity
	}
	q, err := lockfree.NewArrayQueue[byte](capacity)
	if err != nil {
		return nil, err
	}
	return &InputBuffer{buf: q}, nil
}

// Push appends b and reports whether there was room.
func (in *InputBuffer) Push(b byte) bool {
	return in.buf.Push(b) == nil
}

// Read copies buffered bytes into p. It returns 0, nil when nothing is
// buffered rather than waiting.
func (in *InputBuffer) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		b, ok := in.buf.Pop()
		if !ok {
			break
		}
		p[n] = b
		n++
	}
	return n, nil
}

// Drain removes and returns everything buffered.
func (in *InputBuffer) Drain() []byte {
	out := make([]byte, 0, in.buf.Len())
	for {
		b, ok := in.buf.Pop()
		if !ok {
			return out
		}
		out = append(out, b)
	}
}

// Len returns the number of buffered bytes.
func (in *InputBuffer) Len() int { return in.buf.Len() }
