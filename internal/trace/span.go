package trace

import (
	"sync/atomic"
	"time"
)

var (
	seq    atomic.Uint64
	spanID atomic.Uint64
)

// NextSeq returns the next event sequence number, starting at 1.
func NextSeq() uint64 { return seq.Add(1) }

// NextSpanID returns a fresh span ID, starting at 1.
func NextSpanID() uint64 { return spanID.Add(1) }

// Span is an open begin/end pair. The zero Span is inactive and all of its
// methods are no-ops, so disabled tracing costs no allocation on the poll
// and interrupt paths.
type Span struct {
	t       Tracer
	id      uint64
	parent  uint64
	task    uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

// Begin opens a span under parent (0 for a root span).
func Begin(t Tracer, scope Scope, name string, parent uint64) Span {
	return BeginTask(t, scope, name, parent, 0)
}

// BeginTask opens a span covering one poll of the given task.
func BeginTask(t Tracer, scope Scope, name string, parent, task uint64) Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return Span{}
	}
	s := Span{
		t:       t,
		id:      NextSpanID(),
		parent:  parent,
		task:    task,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	t.Emit(s.event(KindSpanBegin, s.started, ""))
	return s
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	return &Event{
		Time:     at,
		Seq:      NextSeq(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		TaskID:   s.task,
		Name:     s.name,
		Detail:   detail,
	}
}

// Active reports whether the span records anything.
func (s *Span) Active() bool { return s.t != nil }

// ID returns the span ID, 0 for an inactive span.
func (s *Span) ID() uint64 { return s.id }

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if !s.Active() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 1)
	}
	s.extra[key] = value
	return s
}

// End closes the span and returns how long it was open.
func (s *Span) End(detail string) time.Duration {
	if !s.Active() {
		return 0
	}
	now := time.Now()
	ev := s.event(KindSpanEnd, now, detail)
	ev.Extra = s.extra
	s.t.Emit(ev)
	return now.Sub(s.started)
}
