package trace

import "errors"

// MultiTracer copies every event to several tracers. Each sink still
// applies its own level.
type MultiTracer struct {
	level Level
	sinks []Tracer
}

func NewMultiTracer(level Level, sinks ...Tracer) *MultiTracer {
	return &MultiTracer{level: level, sinks: sinks}
}

func (t *MultiTracer) Emit(ev *Event) {
	if ev.Seq == 0 {
		ev.Seq = NextSeq()
	}
	for _, s := range t.sinks {
		e := *ev
		s.Emit(&e)
	}
}

func (t *MultiTracer) Flush() error {
	var errs []error
	for _, s := range t.sinks {
		errs = append(errs, s.Flush())
	}
	return errors.Join(errs...)
}

func (t *MultiTracer) Close() error {
	var errs []error
	for _, s := range t.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

// Ring returns the first ring sink, or nil.
func (t *MultiTracer) Ring() *RingTracer {
	for _, s := range t.sinks {
		if r, ok := s.(*RingTracer); ok {
			return r
		}
	}
	return nil
}

func (t *MultiTracer) Level() Level  { return t.level }
func (t *MultiTracer) Enabled() bool { return t.level > LevelOff }
