package input

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/shlex"

	"ember/internal/keyboard"
)

// Step is one action: inject Bytes, or pause for Wait.
type Step struct {
	Line  int
	Bytes []byte
	Wait  time.Duration
}

// ScriptError reports a malformed script line.
type ScriptError struct {
	Line int
	Err  error
}

func (e *ScriptError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *ScriptError) Unwrap() error { return e.Err }

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUntypeable     = errors.New("character has no key on the US layout")
)

// ParseScript reads a whole script.
func ParseScript(r io.Reader) ([]Step, error) {
	var steps []Step
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		words, err := shlex.Split(sc.Text())
		if err != nil {
			return nil, &ScriptError{Line: line, Err: err}
		}
		if len(words) == 0 {
			continue
		}
		step, err := parseCommand(words)
		if err != nil {
			return nil, &ScriptError{Line: line, Err: err}
		}
		step.Line = line
		steps = append(steps, step)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return steps, nil
}

// LoadScript parses the script file at path.
func LoadScript(path string) ([]Step, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	steps, err := ParseScript(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return steps, nil
}

func parseCommand(words []string) (Step, error) {
	cmd, args := words[0], words[1:]
	switch cmd {
	case "type":
		if len(args) == 0 {
			return Step{}, errors.New("type: missing text")
		}
		b, err := TypeText(strings.Join(args, " "))
		return Step{Bytes: b}, err

	case "key":
		if len(args) < 1 || len(args) > 2 {
			return Step{}, errors.New("key: want <name> [tap|down|up]")
		}
		code, ok := keyboard.ParseKeyCode(args[0])
		if !ok {
			return Step{}, fmt.Errorf("key: unknown key %q", args[0])
		}
		action := "tap"
		if len(args) == 2 {
			action = args[1]
		}
		switch action {
		case "tap":
			return Step{Bytes: append(keyboard.MakeCode(code), keyboard.BreakCode(code)...)}, nil
		case "down":
			return Step{Bytes: keyboard.MakeCode(code)}, nil
		case "up":
			return Step{Bytes: keyboard.BreakCode(code)}, nil
		}
		return Step{}, fmt.Errorf("key: unknown action %q", action)

	case "raw":
		if len(args) == 0 {
			return Step{}, errors.New("raw: missing bytes")
		}
		var out []byte
		for _, a := range args {
			h := strings.TrimPrefix(strings.ToLower(a), "0x")
			b, err := hex.DecodeString(h)
			if err != nil {
				return Step{}, fmt.Errorf("raw: %q: %w", a, err)
			}
			out = append(out, b...)
		}
		return Step{Bytes: out}, nil

	case "wait":
		if len(args) != 1 {
			return Step{}, errors.New("wait: want one duration")
		}
		d, err := time.ParseDuration(args[0])
		if err != nil {
			return Step{}, fmt.Errorf("wait: %w", err)
		}
		if d < 0 {
			return Step{}, fmt.Errorf("wait: negative duration %s", d)
		}
		return Step{Wait: d}, nil
	}
	return Step{}, fmt.Errorf("%w %q", ErrUnknownCommand, cmd)
}

// TypeText returns the scancodes that type text with caps lock off.
func TypeText(text string) ([]byte, error) {
	var out []byte
	for _, r := range text {
		st, ok := keyboard.StrokeFor(r)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUntypeable, r)
		}
		out = append(out, st.Scancodes()...)
	}
	return out, nil
}
