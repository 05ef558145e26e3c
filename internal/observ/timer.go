package observ

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Timer records boot phases in start order. Reports may be taken while
// phases are still open; an open phase reports zero duration.
type Timer struct {
	mu     sync.Mutex
	phases []phase
}

type phase struct {
	name  string
	start time.Time
	dur   time.Duration
	note  string
	open  bool
}

func NewTimer() *Timer { return &Timer{} }

// Track opens a phase and returns the function that closes it with a note.
// Closing twice keeps the first result.
func (t *Timer) Track(name string) (done func(note string)) {
	t.mu.Lock()
	idx := len(t.phases)
	t.phases = append(t.phases, phase{name: name, start: time.Now(), open: true})
	t.mu.Unlock()

	return func(note string) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if p := &t.phases[idx]; p.open {
			p.dur, p.note, p.open = time.Since(p.start), note, false
		}
	}
}

// PhaseReport is one phase in a Report.
type PhaseReport struct {
	Name       string  `json:"name" msgpack:"name"`
	DurationMS float64 `json:"duration_ms" msgpack:"duration_ms"`
	Note       string  `json:"note,omitempty" msgpack:"note,omitempty"`
}

// Report is the serialisable form of a Timer.
type Report struct {
	TotalMS float64       `json:"total_ms" msgpack:"total_ms"`
	Phases  []PhaseReport `json:"phases" msgpack:"phases"`
}

func ms(d time.Duration) float64 { return d.Seconds() * 1e3 }

// Report snapshots the phases. An empty timer yields the zero Report.
func (t *Timer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	var r Report
	var total time.Duration
	for _, p := range t.phases {
		total += p.dur
		r.Phases = append(r.Phases, PhaseReport{Name: p.name, DurationMS: ms(p.dur), Note: p.note})
	}
	r.TotalMS = ms(total)
	return r
}

// Summary renders the report as an aligned table for stderr.
func (t *Timer) Summary() string {
	r := t.Report()
	var sb strings.Builder
	sb.WriteString("boot timings:\n")
	row := func(name string, v float64, note string) {
		fmt.Fprintf(&sb, "  %-20s %7.3f ms", name, v)
		if note != "" {
			fmt.Fprintf(&sb, "  // %s", note)
		}
		sb.WriteByte('\n')
	}
	for _, p := range r.Phases {
		row(p.Name, p.DurationMS, p.Note)
	}
	row("total", r.TotalMS, "")
	return sb.String()
}
