package task

// Poll is the result of advancing a Future by one step.
type Poll uint8

const (
	// Pending means the future registered its waker and must be polled again
	// once that waker fires.
	Pending Poll = iota
	// Ready means the future has completed and must not be polled again.
	Ready
)

func (p Poll) String() string {
	switch p {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// Future is a suspendable computation.
type Future interface {
	Poll(cx *Context) Poll
}

// FutureFunc adapts a function to Future.
type FutureFunc func(cx *Context) Poll

// Poll calls f(cx).
func (f FutureFunc) Poll(cx *Context) Poll { return f(cx) }

// Waker marks a task ready. Implementations must be callable from interrupt
// handlers: no blocking, no allocation, no locks.
type Waker interface {
	Wake()
}

// Context is handed to Future.Poll.
type Context struct {
	waker Waker
}

// NewContext builds a poll context around w.
func NewContext(w Waker) *Context {
	return &Context{waker: w}
}

// Waker returns the waker of the task being polled.
func (cx *Context) Waker() Waker {
	return cx.waker
}

type noopWaker struct{}

func (noopWaker) Wake() {}

// NoopWaker is a Waker that does nothing, for one-shot polls.
var NoopWaker Waker = noopWaker{}
