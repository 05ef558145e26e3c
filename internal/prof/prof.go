// Package prof collects Go runtime profiles of the host process while the
// simulated machine runs.
package prof

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"sync"
)

// Options names the files to write. Empty paths disable that profile.
type Options struct {
	CPUProfile   string
	MemProfile   string
	RuntimeTrace string
}

// Session is a set of running profilers.
type Session struct {
	opts      Options
	cpuFile   *os.File
	traceFile *os.File
	once      sync.Once
	err       error
}

// Start enables the profilers named in opts. On error nothing is left running.
func Start(opts Options) (*Session, error) {
	s := &Session{opts: opts}
	if opts.CPUProfile != "" {
		f, err := os.Create(opts.CPUProfile)
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		s.cpuFile = f
	}
	if opts.RuntimeTrace != "" {
		f, err := os.Create(opts.RuntimeTrace)
		if err == nil {
			if err = trace.Start(f); err != nil {
				_ = f.Close()
			}
		}
		if err != nil {
			s.stopCPU()
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
		s.traceFile = f
	}
	return s, nil
}

func (s *Session) stopCPU() error {
	if s.cpuFile == nil {
		return nil
	}
	pprof.StopCPUProfile()
	err := s.cpuFile.Close()
	s.cpuFile = nil
	return err
}

func (s *Session) stopTrace() error {
	if s.traceFile == nil {
		return nil
	}
	trace.Stop()
	err := s.traceFile.Close()
	s.traceFile = nil
	return err
}

func (s *Session) writeMem() error {
	if s.opts.MemProfile == "" {
		return nil
	}
	f, err := os.Create(s.opts.MemProfile)
	if err != nil {
		return err
	}
	runtime.GC()
	werr := pprof.WriteHeapProfile(f)
	return errors.Join(werr, f.Close())
}

// Stop ends the trace and CPU profile and writes the heap profile. Later
// calls return the first call's result.
func (s *Session) Stop() error {
	s.once.Do(func() {
		s.err = errors.Join(s.stopTrace(), s.stopCPU(), s.writeMem())
	})
	return s.err
}
