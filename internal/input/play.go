package input

import (
	"context"
	"fmt"
	"time"

	"ember/internal/trace"
)

// InjectFunc hands bytes to the keyboard device and returns how many it took.
type InjectFunc func(scancodes ...byte) int

// Play runs steps in order, one byte per injection. It stops early when ctx
// is done or the device refuses a byte. Steps are traced through the tracer
// carried by ctx.
func Play(ctx context.Context, steps []Step, inject InjectFunc) error {
	tracer := trace.FromContext(ctx)
	for _, st := range steps {
		if st.Wait > 0 {
			trace.Point(tracer, trace.ScopeKernel, "input.wait", st.Wait.String())
			t := time.NewTimer(st.Wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
			continue
		}
		if len(st.Bytes) > 0 {
			trace.Point(tracer, trace.ScopeKernel, "input.inject",
				fmt.Sprintf("line %d: % x", st.Line, st.Bytes))
		}
		for _, b := range st.Bytes {
			if err := ctx.Err(); err != nil {
				return err
			}
			if inject(b) != 1 {
				return fmt.Errorf("input: line %d: keyboard device dropped 0x%02x", st.Line, b)
			}
		}
	}
	return nil
}
