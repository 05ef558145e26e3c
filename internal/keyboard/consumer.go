package keyboard

import (
	"fmt"
	"io"
	"sync/atomic"

	"ember/internal/task"
	"ember/internal/trace"
)

// Terminal is the text surface keystrokes are echoed to.
type Terminal interface {
	io.Writer
	CursorLeft()
	CursorRight()
	CursorUp()
	CursorDown()
}

// StdinSink receives typed ASCII bytes. Push reports false when the byte
// was dropped.
type StdinSink interface {
	Push(b byte) bool
}

// ConsumerConfig wires a Consumer to its outputs. Serial and Stdin may be nil.
type ConsumerConfig struct {
	Terminal Terminal
	Serial   io.Writer
	Stdin    StdinSink
	Tracer   trace.Tracer
}

// Consumer is the keyboard task: it drains a Stream forever and turns
// scancodes into terminal output.
type Consumer struct {
	stream *Stream
	kbd    *Keyboard
	cfg    ConsumerConfig

	bytes atomic.Uint64
	keys  atomic.Uint64
}

// NewConsumer builds the keyboard task around stream.
func NewConsumer(stream *Stream, cfg ConsumerConfig) *Consumer {
	if cfg.Tracer == nil {
		cfg.Tracer = trace.Nop
	}
	return &Consumer{stream: stream, kbd: NewKeyboard(), cfg: cfg}
}

// Poll handles every buffered scancode and returns Pending once the stream
// runs dry. It never completes.
func (c *Consumer) Poll(cx *task.Context) task.Poll {
	for {
		b, p := c.stream.PollNext(cx)
		if p == task.Pending {
			return task.Pending
		}
		c.bytes.Add(1)
		ev, ok := c.kbd.AddByte(b)
		if !ok {
			continue
		}
		key, ok := c.kbd.Process(ev)
		if !ok {
			continue
		}
		c.keys.Add(1)
		c.handle(key)
	}
}

func (c *Consumer) handle(key DecodedKey) {
	term := c.cfg.Terminal
	if key.IsRaw {
		switch key.Raw {
		case KeyArrowLeft:
			term.CursorLeft()
		case KeyArrowRight:
			term.CursorRight()
		case KeyArrowUp:
			term.CursorUp()
		case KeyArrowDown:
			term.CursorDown()
		default:
			if c.cfg.Serial != nil {
				fmt.Fprintf(c.cfg.Serial, "%v", key.Raw)
			}
		}
		return
	}

	switch r := key.Rune; {
	case r == '\b':
		term.CursorLeft()
	case r == 0x7F:
		// Delete is not echoed
	case r < 0x80:
		_, _ = term.Write([]byte{byte(r)})
		if c.cfg.Stdin != nil && !c.cfg.Stdin.Push(byte(r)) {
			trace.Warn(c.cfg.Tracer, trace.ScopeTask, "stdin buffer full",
				fmt.Sprintf("dropping %q", r))
		}
	default:
		fmt.Fprintf(term, "%q", r)
	}
}

// Bytes counts scancode bytes taken from the stream.
func (c *Consumer) Bytes() uint64 { return c.bytes.Load() }

// Keys counts decoded key presses.
func (c *Consumer) Keys() uint64 { return c.keys.Load() }

// StreamStats returns the resolution counters of the consumer's stream.
func (c *Consumer) StreamStats() StreamStats { return c.stream.Stats() }
