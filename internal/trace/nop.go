package trace

type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop discards everything. Kernel components fall back to it when no tracer
// is configured, so hot paths only pay for an Enabled check.
var Nop Tracer = nopTracer{}
