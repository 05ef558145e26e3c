package trace

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "boot", "detail", "debug", "DEBUG"} {
		if _, err := ParseLevel(s); err != nil {
			t.Errorf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLevelScopes(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelError, ScopeKernel, false},
		{LevelBoot, ScopeKernel, true},
		{LevelBoot, ScopeExecutor, false},
		{LevelDetail, ScopeInterrupt, true},
		{LevelDetail, ScopeTask, false},
		{LevelDebug, ScopeTask, true},
	}
	for _, c := range cases {
		if got := c.level.ShouldEmit(c.scope); got != c.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", c.level, c.scope, got, c.want)
		}
	}
}

func TestRingKeepsWarningsAtErrorLevel(t *testing.T) {
	r := NewRingTracer(8, LevelError)
	Point(r, ScopeKernel, "boot", "")
	Warn(r, ScopeInterrupt, "scancode queue full", "dropped 0x1e")

	warnings := r.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("want 1 warning, got %d", len(warnings))
	}
	if warnings[0].Name != "scancode queue full" || warnings[0].Detail != "dropped 0x1e" {
		t.Fatalf("unexpected warning %+v", warnings[0])
	}
	if len(r.Snapshot()) != 1 {
		t.Fatalf("boot point must be filtered at error level")
	}
}

func TestRingWrapsInOrder(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(r, ScopeTask, name, "")
	}
	var names []string
	for _, ev := range r.Snapshot() {
		names = append(names, ev.Name)
	}
	if got := strings.Join(names, ""); got != "cde" {
		t.Fatalf("snapshot order = %q, want %q", got, "cde")
	}
	if r.Evicted() != 2 {
		t.Fatalf("evicted = %d, want 2", r.Evicted())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestStreamCountsWriteErrors(t *testing.T) {
	s := NewStreamTracer(failingWriter{}, LevelBoot, FormatText)
	Warn(s, ScopeInterrupt, "scancode queue full", "")
	Point(s, ScopeKernel, "boot", "")
	Point(s, ScopeTask, "poll", "") // filtered at boot level
	if got := s.WriteErrors(); got != 2 {
		t.Fatalf("write errors = %d, want 2", got)
	}
}

func TestStreamFormats(t *testing.T) {
	var text, js bytes.Buffer
	m := NewMultiTracer(LevelDebug,
		NewStreamTracer(&text, LevelDebug, FormatText),
		NewStreamTracer(&js, LevelDebug, FormatNDJSON),
		NewRingTracer(4, LevelDebug),
	)
	span := BeginTask(m, ScopeTask, "poll", 0, 42)
	span.WithExtra("result", "pending").End("")

	if !strings.Contains(text.String(), "poll #42") {
		t.Errorf("text output missing task id:\n%s", text.String())
	}
	if !strings.Contains(js.String(), `"task_id":42`) || !strings.Contains(js.String(), `"result":"pending"`) {
		t.Errorf("ndjson output missing fields:\n%s", js.String())
	}
	if m.Ring() == nil || len(m.Ring().Snapshot()) != 2 {
		t.Errorf("ring should hold begin and end events")
	}
}

func TestNewOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Enabled() {
		t.Fatal("off tracer must be disabled")
	}
	span := Begin(tr, ScopeKernel, "boot", 0)
	if span.End("") != 0 {
		t.Fatal("nop span must report zero duration")
	}
}

func TestHeartbeatStopIdempotent(t *testing.T) {
	var h *Heartbeat
	h.Stop()
	if StartHeartbeat(Nop, time.Millisecond, nil) != nil {
		t.Fatal("disabled tracer must not start a heartbeat")
	}
}

func TestHeartbeatCarriesProbe(t *testing.T) {
	ring := NewRingTracer(64, LevelError)
	h := StartHeartbeat(ring, time.Millisecond, func() string { return "halted=true" })
	deadline := time.Now().Add(5 * time.Second)
	for len(ring.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()

	events := ring.Snapshot()
	if len(events) == 0 {
		t.Fatal("no heartbeat recorded")
	}
	if ev := events[0]; ev.Kind != KindHeartbeat || ev.Detail != "#1 halted=true" {
		t.Fatalf("unexpected heartbeat %+v", ev)
	}
}
