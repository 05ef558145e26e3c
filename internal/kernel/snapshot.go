package kernel

import (
	"fmt"

	"ember/internal/keyboard"
	"ember/internal/machine"
	"ember/internal/observ"
	"ember/internal/task"
)

// KeyboardStats describes the scancode path.
type KeyboardStats struct {
	Buffered int                  `json:"buffered" msgpack:"buffered"`
	Capacity int                  `json:"capacity" msgpack:"capacity"`
	Accepted uint64               `json:"accepted" msgpack:"accepted"`
	Dropped  uint64               `json:"dropped" msgpack:"dropped"`
	Stream   keyboard.StreamStats `json:"stream" msgpack:"stream"`
	Bytes    uint64               `json:"bytes" msgpack:"bytes"`
	Keys     uint64               `json:"keys" msgpack:"keys"`
}

// Snapshot is a point-in-time view of a running kernel.
type Snapshot struct {
	Executor task.Stats    `json:"executor" msgpack:"executor"`
	Machine  machine.Stats `json:"machine" msgpack:"machine"`
	Keyboard KeyboardStats `json:"keyboard" msgpack:"keyboard"`
	Halted   bool          `json:"halted" msgpack:"halted"`
	Screen   []string      `json:"screen" msgpack:"screen"`
	Stdin    int           `json:"stdin" msgpack:"stdin"`
	Boot     observ.Report `json:"boot" msgpack:"boot"`
}

// Snapshot gathers counters from every subsystem. It is safe to call while
// the kernel runs; the values are read independently and need not agree.
func (k *Kernel) Snapshot() (Snapshot, error) {
	if !k.booted {
		return Snapshot{}, ErrNotBooted
	}
	return Snapshot{
		Executor: k.exec.Stats(),
		Machine:  k.cpu.Stats(),
		Keyboard: KeyboardStats{
			Buffered: k.queue.Len(),
			Capacity: k.queue.Cap(),
			Accepted: k.queue.Accepted(),
			Dropped:  k.queue.Dropped(),
			Stream:   k.consumer.StreamStats(),
			Bytes:    k.consumer.Bytes(),
			Keys:     k.consumer.Keys(),
		},
		Halted: k.cpu.Halted(),
		Screen: k.screen.Lines(),
		Stdin:  k.stdin.Len(),
		Boot:   k.timings.Report(),
	}, nil
}

// heartbeat summarises liveness for trace heartbeats: a kernel that keeps
// beating with halted=true and a steady poll count is idle, not hung.
func (k *Kernel) heartbeat() string {
	st := k.exec.Stats()
	return fmt.Sprintf("halted=%t ready=%d polls=%d scancodes=%d",
		k.cpu.Halted(), st.Ready, st.Polls, k.queue.Len())
}
