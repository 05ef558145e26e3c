package trace

import (
	"encoding/json"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
)

// Format is how a stream or a ring dump renders events.
type Format uint8

const (
	FormatAuto   Format = iota // chosen from the output path
	FormatText                 // one readable line per event
	FormatNDJSON               // one JSON object per line
)

// ParseFormat accepts auto, text, ndjson and json (an alias for ndjson).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
}

// FormatForPath returns NDJSON for .ndjson and .jsonl paths, text otherwise.
func FormatForPath(path string) Format {
	switch filepath.Ext(path) {
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	}
	return FormatText
}

// FormatEvent renders ev as one line, newline included.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return eventJSON(ev)
	}
	return eventText(ev)
}

type jsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	TaskID   uint64            `json:"task_id,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

const jsonTime = "2006-01-02T15:04:05.000000Z07:00"

func eventJSON(ev *Event) []byte {
	line, err := json.Marshal(jsonEvent{
		Time:     ev.Time.Format(jsonTime),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		TaskID:   ev.TaskID,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	})
	if err != nil {
		// only strings and integers; cannot fail
		panic(err)
	}
	return append(line, '\n')
}

var kindMarks = map[Kind]string{
	KindSpanBegin: "> ",
	KindSpanEnd:   "< ",
	KindPoint:     ". ",
	KindHeartbeat: "~ ",
	KindWarning:   "! ",
}

// eventText renders "[seq] scope  mark name #task (detail) {k=v, ...}".
// Child spans are indented by two spaces.
func eventText(ev *Event) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%6d] %-9s ", ev.Seq, ev.Scope)
	if ev.ParentID != 0 {
		sb.WriteString("  ")
	}
	sb.WriteString(kindMarks[ev.Kind])
	sb.WriteString(ev.Name)
	if ev.TaskID != 0 {
		fmt.Fprintf(&sb, " #%d", ev.TaskID)
	}
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}
	if len(ev.Extra) > 0 {
		pairs := make([]string, 0, len(ev.Extra))
		for _, k := range slices.Sorted(maps.Keys(ev.Extra)) {
			pairs = append(pairs, k+"="+ev.Extra[k])
		}
		fmt.Fprintf(&sb, " {%s}", strings.Join(pairs, ", "))
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
