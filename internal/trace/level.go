package trace

import (
	"fmt"
	"strings"
)

// Level is how much the kernel traces.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // warnings only
	LevelBoot         // plus boot phases and input playback
	LevelDetail       // plus executor drains and interrupt deliveries
	LevelDebug        // plus every task poll
)

var levelNames = [...]string{
	LevelOff:    "off",
	LevelError:  "error",
	LevelBoot:   "boot",
	LevelDetail: "detail",
	LevelDebug:  "debug",
}

// widest scope each level admits; 0 admits none
var levelScopes = [...]Scope{
	LevelOff:    0,
	LevelError:  0,
	LevelBoot:   ScopeKernel,
	LevelDetail: ScopeInterrupt,
	LevelDebug:  ScopeTask,
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel parses off, error, boot, detail or debug.
func ParseLevel(s string) (Level, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for l, name := range levelNames {
		if name == want {
			return Level(l), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|boot|detail|debug)", s)
}

// ShouldEmit reports whether spans and points of scope are recorded at l.
func (l Level) ShouldEmit(scope Scope) bool {
	return int(l) < len(levelScopes) && scope != 0 && scope <= levelScopes[l]
}

// admits reports whether a sink at level l records ev. Warnings and
// heartbeats pass any enabled level.
func (l Level) admits(ev *Event) bool {
	switch {
	case l == LevelOff:
		return false
	case ev.Kind == KindWarning, ev.Kind == KindHeartbeat:
		return true
	}
	return l.ShouldEmit(ev.Scope)
}
