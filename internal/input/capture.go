package input

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// captureSchema is bumped whenever Capture's encoding changes.
const captureSchema uint16 = 1

// Capture is a recorded keyboard session.
type Capture struct {
	Schema  uint16         `msgpack:"schema"`
	Session string         `msgpack:"session"`
	Started time.Time      `msgpack:"started"`
	Events  []CaptureEvent `msgpack:"events"`
}

// CaptureEvent is one injection, Offset after the session started.
type CaptureEvent struct {
	Offset time.Duration `msgpack:"offset"`
	Bytes  []byte        `msgpack:"bytes"`
}

// Steps replays the capture with its original timing.
func (c *Capture) Steps() []Step {
	steps := make([]Step, 0, 2*len(c.Events))
	var at time.Duration
	for i, ev := range c.Events {
		if gap := ev.Offset - at; gap > 0 {
			steps = append(steps, Step{Line: i + 1, Wait: gap})
		}
		at = ev.Offset
		steps = append(steps, Step{Line: i + 1, Bytes: ev.Bytes})
	}
	return steps
}

// Recorder wraps an InjectFunc and records what passes through it.
type Recorder struct {
	mu      sync.Mutex
	next    InjectFunc
	capture Capture
	now     func() time.Time
}

// NewRecorder starts a session with a fresh ID.
func NewRecorder(next InjectFunc) *Recorder {
	r := &Recorder{next: next, now: time.Now}
	r.capture = Capture{
		Schema:  captureSchema,
		Session: uuid.NewString(),
		Started: r.now(),
	}
	return r
}

// Inject records scancodes and forwards them.
func (r *Recorder) Inject(scancodes ...byte) int {
	r.mu.Lock()
	r.capture.Events = append(r.capture.Events, CaptureEvent{
		Offset: r.now().Sub(r.capture.Started),
		Bytes:  append([]byte(nil), scancodes...),
	})
	r.mu.Unlock()
	return r.next(scancodes...)
}

// Capture returns a copy of everything recorded so far.
func (r *Recorder) Capture() Capture {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.capture
	c.Events = append([]CaptureEvent(nil), r.capture.Events...)
	return c
}

// WriteCapture encodes c to w.
func WriteCapture(w io.Writer, c Capture) error {
	if err := msgpack.NewEncoder(w).Encode(&c); err != nil {
		return fmt.Errorf("input: encode capture: %w", err)
	}
	return nil
}

// ReadCapture decodes a capture and checks its schema and session ID.
func ReadCapture(r io.Reader) (Capture, error) {
	var c Capture
	if err := msgpack.NewDecoder(r).Decode(&c); err != nil {
		return Capture{}, fmt.Errorf("input: decode capture: %w", err)
	}
	if c.Schema != captureSchema {
		return Capture{}, fmt.Errorf("input: capture schema %d, want %d", c.Schema, captureSchema)
	}
	if _, err := uuid.Parse(c.Session); err != nil {
		return Capture{}, fmt.Errorf("input: capture session: %w", err)
	}
	return c, nil
}

// SaveCapture writes c to path, replacing it atomically.
func SaveCapture(path string, c Capture) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(f.Name()) }()
	if err := WriteCapture(f, c); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// LoadCapture reads the capture file at path.
func LoadCapture(path string) (Capture, error) {
	f, err := os.Open(path)
	if err != nil {
		return Capture{}, err
	}
	defer f.Close()
	return ReadCapture(f)
}
