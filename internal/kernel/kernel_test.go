package kernel

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ember/internal/interrupt"
	"ember/internal/keyboard"
	"ember/internal/lockfree"
	"ember/internal/task"
	"ember/internal/trace"
)

func bootKernel(t *testing.T, cfg Config, tasks ...*task.Task) *Kernel {
	t.Helper()
	k, err := New(Options{Config: cfg, Queue: &keyboard.Queue{}, Tasks: tasks})
	require.NoError(t, err)
	require.NoError(t, k.Boot())
	return k
}

func startKernel(t *testing.T, k *Kernel) {
	t.Helper()
	done, err := k.Start()
	require.NoError(t, err)
	t.Cleanup(func() {
		k.PowerOff()
		<-done
	})
}

func waitIdle(t *testing.T, k *Kernel) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, k.WaitIdle(ctx))
}

func typed(text string) []byte {
	var out []byte
	for _, r := range text {
		st, ok := keyboard.StrokeFor(r)
		if !ok {
			panic("untypeable rune")
		}
		out = append(out, st.Scancodes()...)
	}
	return out
}

func TestBootPrintsPhases(t *testing.T) {
	k := bootKernel(t, DefaultConfig())
	screen := k.Screen().String()
	for _, phase := range []string{"console", "scancode queue", "interrupts", "executor", "tasks"} {
		require.Contains(t, screen, phase+" initialized")
	}
	phases := k.Timings().Report().Phases
	require.Len(t, phases, 5)
	require.Equal(t, "executor", phases[3].Name)
	require.Equal(t, fmt.Sprintf("ready queue %d", task.DefaultQueueCapacity), phases[3].Note)
	require.True(t, k.Machine().InterruptsEnabled())
	require.ErrorIs(t, k.Boot(), ErrAlreadyBooted)
}

func TestNotBooted(t *testing.T) {
	k, err := New(Options{Config: DefaultConfig(), Queue: &keyboard.Queue{}})
	require.NoError(t, err)
	_, err = k.Start()
	require.ErrorIs(t, err, ErrNotBooted)
	_, err = k.Snapshot()
	require.ErrorIs(t, err, ErrNotBooted)
	require.ErrorIs(t, k.WaitIdle(context.Background()), ErrNotBooted)
	require.PanicsWithValue(t, ErrNotBooted, k.Run)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Executor.QueueCapacity = 0
	_, err := New(Options{Config: cfg})
	require.Error(t, err)
}

func TestScancodeSingletonInitialisesOnce(t *testing.T) {
	first, err := New(Options{Config: DefaultConfig()})
	require.NoError(t, err)
	require.NoError(t, first.Boot())
	require.True(t, keyboard.Scancodes.Initialized())

	second, err := New(Options{Config: DefaultConfig()})
	require.NoError(t, err)
	require.ErrorIs(t, second.Boot(), lockfree.ErrAlreadyInitialized)
}

func TestKernelEchoesKeystrokes(t *testing.T) {
	k := bootKernel(t, DefaultConfig())
	startKernel(t, k)
	waitIdle(t, k)

	k.Inject(0x1E, 0x30, 0x2E)
	waitIdle(t, k)

	snap, err := k.Snapshot()
	require.NoError(t, err)
	require.Contains(t, strings.Join(snap.Screen, "\n"), "tasks initialized\nabc")
	require.Equal(t, []byte("abc"), k.Stdin().Drain())
	require.Equal(t, uint64(3), snap.Keyboard.Keys)
	require.Equal(t, uint64(3), snap.Keyboard.Accepted)
	require.Zero(t, snap.Keyboard.Dropped)
	require.Equal(t, 1, snap.Executor.Tasks)
	require.True(t, snap.Halted)
	require.Positive(t, snap.Machine.Halts)
}

func TestBootNoteReportsExecutorCapacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Executor.QueueCapacity = 7
	k := bootKernel(t, cfg)
	require.Equal(t, 7, k.exec.Stats().QueueCap)
	require.Equal(t, "ready queue 7", k.Timings().Report().Phases[3].Note)
}

// TestWaitIdleWaitsForSlowHandler holds the keyboard handler after the
// data port is read: the device is empty and the CPU still halted, but the
// byte has not reached the queue yet.
func TestWaitIdleWaitsForSlowHandler(t *testing.T) {
	k := bootKernel(t, DefaultConfig())
	interrupt.Install(k.Machine(), func(b byte) {
		time.Sleep(50 * time.Millisecond)
		k.queue.Add(b)
	})
	startKernel(t, k)
	waitIdle(t, k)

	k.Inject(0x1E)
	waitIdle(t, k)

	snap, err := k.Snapshot()
	require.NoError(t, err)
	require.Equal(t, uint64(1), snap.Keyboard.Accepted)
	require.Equal(t, uint64(1), snap.Keyboard.Keys)
	require.Equal(t, []byte("a"), k.Stdin().Drain())
}

// TestKernelNoLostWakeups races the keyboard device against the executor's
// idle check: every byte must be seen even though the CPU keeps halting.
func TestKernelNoLostWakeups(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Keyboard.QueueCapacity = 4096
	cfg.Console.Stdin = 4096
	k := bootKernel(t, cfg)
	startKernel(t, k)

	text := strings.Repeat("the quick brown fox jumps over the lazy dog\n", 10)
	codes := typed(text)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i, b := range codes {
			for k.Machine().DeviceBuffered() > 256 {
				time.Sleep(time.Microsecond)
			}
			k.Inject(b)
			if i%7 == 0 {
				time.Sleep(10 * time.Microsecond)
			}
		}
	}()
	wg.Wait()
	waitIdle(t, k)

	snap, err := k.Snapshot()
	require.NoError(t, err)
	require.Equal(t, uint64(len(codes)), snap.Keyboard.Bytes)
	require.Equal(t, uint64(len(codes)), snap.Keyboard.Accepted)
	require.Zero(t, snap.Machine.Dropped)
	require.Equal(t, text, string(k.Stdin().Drain()))
}

type countdown struct {
	left int
}

func (c *countdown) Poll(cx *task.Context) task.Poll {
	if c.left == 0 {
		return task.Ready
	}
	c.left--
	cx.Waker().Wake()
	return task.Pending
}

func TestKernelRunsExtraTasks(t *testing.T) {
	k := bootKernel(t, DefaultConfig(), task.NewNamedTask("countdown", &countdown{left: 3}))
	startKernel(t, k)
	waitIdle(t, k)

	snap, err := k.Snapshot()
	require.NoError(t, err)
	require.Equal(t, uint64(1), snap.Executor.Completed)
	require.Equal(t, 1, snap.Executor.Tasks, "only the keyboard task is left")
	require.Equal(t, snap.Executor.Tasks, snap.Executor.Wakers)
}

func TestMainStopsOnCancel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timer.Interval = Duration{time.Millisecond}
	cfg.Trace.Heartbeat = Duration{time.Millisecond}
	ring := trace.NewRingTracer(64, trace.LevelError)
	k, err := New(Options{Config: cfg, Queue: &keyboard.Queue{}, Tracer: ring})
	require.NoError(t, err)
	require.NoError(t, k.Boot())

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- k.Main(ctx) }()

	require.Eventually(t, func() bool {
		snap, err := k.Snapshot()
		return err == nil && snap.Machine.EOIs >= 3
	}, 5*time.Second, time.Millisecond, "timer interrupts keep arriving")
	require.Eventually(t, func() bool {
		for _, ev := range ring.Snapshot() {
			if ev.Kind == trace.KindHeartbeat && strings.Contains(ev.Detail, "halted=") {
				return true
			}
		}
		return false
	}, 5*time.Second, time.Millisecond, "heartbeats report kernel state")

	cancel()
	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Main did not return after cancel")
	}
	require.Empty(t, ring.Warnings())
}
