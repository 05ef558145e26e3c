package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ember/internal/kernel"
	"ember/internal/trace"
)

// setupTracing applies the trace flags to cfg, builds the tracer and
// attaches it to the command context. The returned cleanup flushes it and,
// in ring mode, dumps the ring to the trace output.
func setupTracing(cmd *cobra.Command, cfg *kernel.Config) (func(), error) {
	flags := cmd.Root().PersistentFlags()
	if flags.Changed("trace-level") {
		cfg.Trace.Level, _ = flags.GetString("trace-level")
	}
	if flags.Changed("trace-mode") {
		cfg.Trace.Mode, _ = flags.GetString("trace-mode")
	}
	if flags.Changed("trace-format") {
		cfg.Trace.Format, _ = flags.GetString("trace-format")
	}
	if flags.Changed("trace-ring-size") {
		cfg.Trace.RingSize, _ = flags.GetInt("trace-ring-size")
	}
	if flags.Changed("trace") {
		cfg.Trace.Output, _ = flags.GetString("trace")
		// asking for an output implies tracing something
		if cfg.Trace.Level == "off" && !flags.Changed("trace-level") {
			cfg.Trace.Level = "boot"
		}
	}
	if flags.Changed("trace-heartbeat") {
		cfg.Trace.Heartbeat.Duration, _ = flags.GetDuration("trace-heartbeat")
	}

	tc, err := cfg.TraceSettings()
	if err != nil {
		return nil, fmt.Errorf("invalid trace settings: %w", err)
	}

	if tc.Level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	tracer, err := trace.New(tc)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	cleanup := func() {
		if tc.Mode == trace.ModeRing {
			dumpRing(cmd, tracer, tc)
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}

func dumpRing(cmd *cobra.Command, tracer trace.Tracer, tc trace.Config) {
	ring, ok := tracer.(*trace.RingTracer)
	if !ok {
		return
	}
	out := cmd.ErrOrStderr()
	format := trace.FormatText
	if path := tc.OutputPath; path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			fmt.Fprintf(out, "trace: %v\n", err)
			return
		}
		defer f.Close()
		out = f
		format = trace.FormatForPath(path)
	}
	if tc.Format != trace.FormatAuto {
		format = tc.Format
	}
	if err := ring.Dump(out, format); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
	}
}
