package prof

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSessionWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		CPUProfile:   filepath.Join(dir, "cpu.pprof"),
		MemProfile:   filepath.Join(dir, "mem.pprof"),
		RuntimeTrace: filepath.Join(dir, "run.trace"),
	}
	s, err := Start(opts)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	for _, p := range []string{opts.CPUProfile, opts.MemProfile, opts.RuntimeTrace} {
		if fi, err := os.Stat(p); err != nil || fi.Size() == 0 {
			t.Errorf("%s: missing or empty (%v)", filepath.Base(p), err)
		}
	}
}

func TestStartFailureLeavesNothingRunning(t *testing.T) {
	dir := t.TempDir()
	_, err := Start(Options{
		CPUProfile:   filepath.Join(dir, "cpu.pprof"),
		RuntimeTrace: filepath.Join(dir, "missing", "run.trace"),
	})
	if err == nil {
		t.Fatal("expected error for unwritable trace path")
	}
	// the CPU profiler must have been released
	s, err := Start(Options{CPUProfile: filepath.Join(dir, "again.pprof")})
	if err != nil {
		t.Fatalf("CPU profiler still held: %v", err)
	}
	_ = s.Stop()
}

func TestEmptyOptions(t *testing.T) {
	s, err := Start(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
}
