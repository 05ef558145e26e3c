package trace

import "time"

// Kind is what an event records.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint     // instant event
	KindHeartbeat // periodic liveness signal
	// KindWarning is a degraded-but-continuing condition such as a dropped
	// scancode. Recorded at every level above LevelOff.
	KindWarning
)

var kindNames = [...]string{
	KindSpanBegin: "begin",
	KindSpanEnd:   "end",
	KindPoint:     "point",
	KindHeartbeat: "heartbeat",
	KindWarning:   "warning",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope says which part of the kernel produced an event. Coarser scopes
// have lower values, so a level admits every scope up to a bound.
type Scope uint8

const (
	ScopeKernel    Scope = iota + 1 // boot, heartbeats, input playback
	ScopeExecutor                   // drains and idle
	ScopeInterrupt                  // deliveries and the scancode path
	ScopeTask                       // single polls
)

var scopeNames = [...]string{
	ScopeKernel:    "kernel",
	ScopeExecutor:  "executor",
	ScopeInterrupt: "interrupt",
	ScopeTask:      "task",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned by the first sink when zero
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	TaskID   uint64 // task being polled, 0 outside a poll
	Name     string
	Detail   string
	Extra    map[string]string
}
