package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ember/internal/prof"
)

// setupProfiling starts the host profilers named by the persistent flags.
// The cleanup reports write errors on stderr.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	var err error
	if opts.CPUProfile, err = flags.GetString("cpu-profile"); err != nil {
		return nil, err
	}
	if opts.MemProfile, err = flags.GetString("mem-profile"); err != nil {
		return nil, err
	}
	if opts.RuntimeTrace, err = flags.GetString("runtime-trace"); err != nil {
		return nil, err
	}
	s, err := prof.Start(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start profiling: %w", err)
	}
	return func() {
		if err := s.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "profiling: %v\n", err)
		}
	}, nil
}
