package kernel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"ember/internal/console"
	"ember/internal/keyboard"
	"ember/internal/task"
	"ember/internal/trace"
)

// ConfigFileName is the file FindConfig looks for.
const ConfigFileName = "ember.toml"

// Duration is a time.Duration that decodes from TOML strings like "10ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the contents of ember.toml.
type Config struct {
	Executor ExecutorConfig `toml:"executor"`
	Keyboard KeyboardConfig `toml:"keyboard"`
	Console  ConsoleConfig  `toml:"console"`
	Timer    TimerConfig    `toml:"timer"`
	Trace    TraceConfig    `toml:"trace"`
	Input    InputConfig    `toml:"input"`

	// Path is the file the config was loaded from, empty for defaults.
	Path string `toml:"-"`
}

type ExecutorConfig struct {
	QueueCapacity int `toml:"queue_capacity"`
}

type KeyboardConfig struct {
	QueueCapacity int `toml:"queue_capacity"`
}

type ConsoleConfig struct {
	Rows   int    `toml:"rows"`
	Cols   int    `toml:"cols"`
	Serial string `toml:"serial"` // serial device for the mirror, empty for none
	Baud   int    `toml:"baud"`
	Stdin  int    `toml:"stdin_capacity"`
}

type TimerConfig struct {
	Interval Duration `toml:"interval"` // zero disables the timer
}

type TraceConfig struct {
	Level     string   `toml:"level"`
	Mode      string   `toml:"mode"`
	Output    string   `toml:"output"`
	Format    string   `toml:"format"` // auto picks from the output extension
	RingSize  int      `toml:"ring_size"`
	Heartbeat Duration `toml:"heartbeat"` // zero disables heartbeats
}

type InputConfig struct {
	Script string `toml:"script"` // played after boot when set
}

// DefaultConfig returns the settings used when no ember.toml is found.
func DefaultConfig() Config {
	return Config{
		Executor: ExecutorConfig{QueueCapacity: task.DefaultQueueCapacity},
		Keyboard: KeyboardConfig{QueueCapacity: keyboard.DefaultQueueCapacity},
		Console: ConsoleConfig{
			Rows:  console.DefaultRows,
			Cols:  console.DefaultCols,
			Baud:  console.DefaultBaud,
			Stdin: console.DefaultInputCapacity,
		},
		Timer: TimerConfig{Interval: Duration{10 * time.Millisecond}},
		Trace: TraceConfig{Level: "off", Mode: "ring", Output: "-", Format: "auto", RingSize: 4096},
	}
}

// FindConfig walks up from startDir to locate ember.toml.
func FindConfig(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadConfig reads path over the defaults. Unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ResolveConfig loads explicitPath if set, otherwise the nearest ember.toml
// above startDir, otherwise the defaults.
func ResolveConfig(explicitPath, startDir string) (Config, error) {
	if explicitPath != "" {
		return LoadConfig(explicitPath)
	}
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Executor.QueueCapacity < 1 {
		errs = append(errs, fmt.Errorf("executor.queue_capacity must be positive, got %d", c.Executor.QueueCapacity))
	}
	if c.Keyboard.QueueCapacity < 1 {
		errs = append(errs, fmt.Errorf("keyboard.queue_capacity must be positive, got %d", c.Keyboard.QueueCapacity))
	}
	if c.Console.Rows < 1 || c.Console.Cols < 1 {
		errs = append(errs, fmt.Errorf("console size %dx%d is empty", c.Console.Rows, c.Console.Cols))
	}
	if c.Console.Stdin < 1 {
		errs = append(errs, fmt.Errorf("console.stdin_capacity must be positive, got %d", c.Console.Stdin))
	}
	if c.Timer.Interval.Duration < 0 {
		errs = append(errs, fmt.Errorf("timer.interval must not be negative, got %s", c.Timer.Interval))
	}
	if c.Trace.Heartbeat.Duration < 0 {
		errs = append(errs, fmt.Errorf("trace.heartbeat must not be negative, got %s", c.Trace.Heartbeat))
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		errs = append(errs, err)
	}
	if _, err := trace.ParseMode(c.Trace.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := trace.ParseFormat(c.Trace.Format); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// TraceSettings converts the [trace] table for trace.New.
func (c *Config) TraceSettings() (trace.Config, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.Config{}, err
	}
	mode, err := trace.ParseMode(c.Trace.Mode)
	if err != nil {
		return trace.Config{}, err
	}
	format, err := trace.ParseFormat(c.Trace.Format)
	if err != nil {
		return trace.Config{}, err
	}
	return trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: c.Trace.Output,
		RingSize:   c.Trace.RingSize,
	}, nil
}
