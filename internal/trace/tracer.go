package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Tracer receives trace events. Implementations must be safe for use from
// interrupt handlers and the executor at the same time.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	// Enabled reports Level() > LevelOff. Hot paths check it before
	// building an event.
	Enabled() bool
}

// StorageMode selects where events go.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // written as they happen
	ModeRing                          // kept in memory, dumped on exit
	ModeBoth
)

var modeNames = map[StorageMode]string{
	ModeStream: "stream",
	ModeRing:   "ring",
	ModeBoth:   "both",
}

func (m StorageMode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "unknown"
}

// ParseMode parses stream, ring or both.
func ParseMode(s string) (StorageMode, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == want {
			return m, nil
		}
	}
	return ModeRing, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

// Config describes a tracer for New.
type Config struct {
	Level      Level
	Mode       StorageMode
	Format     Format    // FormatAuto picks from OutputPath
	Output     io.Writer // overrides OutputPath when set
	OutputPath string    // "-" or empty for stderr
	RingSize   int       // default 4096
}

// New builds the tracer cfg describes. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.RingSize <= 0 {
		cfg.RingSize = 4096
	}
	if cfg.Format == FormatAuto {
		cfg.Format = FormatForPath(cfg.OutputPath)
	}

	var sinks []Tracer
	if cfg.Mode == ModeStream || cfg.Mode == ModeBoth {
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, NewStreamTracer(w, cfg.Level, cfg.Format))
	}
	if cfg.Mode == ModeRing || cfg.Mode == ModeBoth {
		sinks = append(sinks, NewRingTracer(cfg.RingSize, cfg.Level))
	}

	switch len(sinks) {
	case 0:
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	case 1:
		return sinks[0], nil
	}
	return NewMultiTracer(cfg.Level, sinks...), nil
}

func openOutput(cfg Config) (io.Writer, error) {
	switch {
	case cfg.Output != nil:
		return cfg.Output, nil
	case cfg.OutputPath == "" || cfg.OutputPath == "-":
		return stderr{os.Stderr}, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

// stderr hides the Close method of os.Stderr from StreamTracer.Close.
type stderr struct{ io.Writer }

func emit(t Tracer, kind Kind, scope Scope, name, detail string) {
	t.Emit(&Event{
		Time:   time.Now(),
		Kind:   kind,
		Scope:  scope,
		Name:   name,
		Detail: detail,
	})
}

// Warn records a warning. Warnings pass every enabled level.
func Warn(t Tracer, scope Scope, name, detail string) {
	if t != nil && t.Enabled() {
		emit(t, KindWarning, scope, name, detail)
	}
}

// Point records an instant event when t's level admits scope.
func Point(t Tracer, scope Scope, name, detail string) {
	if t != nil && t.Enabled() && t.Level().ShouldEmit(scope) {
		emit(t, KindPoint, scope, name, detail)
	}
}
