// Package trace is the kernel's diagnostic event stream.
//
// The boot sequence, the executor, interrupt delivery and task polls report
// what they do as events. Warnings, such as a dropped scancode, are a kind
// of their own and pass every enabled level, so a ring tracer at
// LevelError doubles as a warning log.
//
//	ember run --trace=- --trace-level=detail --keys "hello"
//	ember run --trace=boot.ndjson --trace-mode=both --trace-heartbeat=100ms
//
// Sinks: Nop when disabled, StreamTracer writes each event as it happens,
// RingTracer keeps the last N for a dump on exit, MultiTracer fans out.
//
// Levels widen by scope: error (warnings only), boot (kernel), detail
// (executor and interrupts), debug (every poll). Heartbeats carry a probe
// string from the kernel so an idle, halted CPU can be told apart from a
// stuck one.
//
// Spans are values; the zero Span is inactive:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeKernel, "boot", 0)
//	defer span.End("")
package trace
