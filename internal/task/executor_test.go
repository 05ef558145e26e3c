package task

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewExecutorValidates(t *testing.T) {
	_, err := NewExecutor(nil, Config{})
	require.Error(t, err)
	_, err = NewExecutor(&fakeCPU{}, Config{QueueCapacity: -1})
	require.Error(t, err)

	e, err := NewExecutor(&fakeCPU{}, Config{})
	require.NoError(t, err)
	require.Equal(t, DefaultQueueCapacity, e.Stats().QueueCap)
}

func TestSpawnedTasksArePolledBeforeIdle(t *testing.T) {
	cpu := &fakeCPU{}
	e := newTestExecutor(cpu, 16)

	futures := make([]*stepFuture, 5)
	for i := range futures {
		futures[i] = &stepFuture{n: 10}
		e.Spawn(NewTask(futures[i]))
	}

	e.RunReady()
	for i, f := range futures {
		require.Equal(t, 1, f.polls, "task %d", i)
	}

	e.sleepIfIdle()
	require.Equal(t, []string{"cli", "sti;hlt"}, cpu.calls)
}

func TestSpawnDuplicateIDIsFatal(t *testing.T) {
	e := newTestExecutor(&fakeCPU{}, 4)
	tk := NewTask(&stepFuture{n: 2})
	e.Spawn(tk)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		require.True(t, errors.Is(err, ErrDuplicateTask))
		require.Equal(t, 1, e.Stats().Tasks)
	}()
	e.Spawn(&Task{id: tk.ID(), future: &stepFuture{n: 1}})
}

func TestSpawnIntoFullQueueIsFatal(t *testing.T) {
	e := newTestExecutor(&fakeCPU{}, 1)
	e.Spawn(NewTask(&stepFuture{n: 1}))
	require.PanicsWithValue(t, ErrTaskQueueFull, func() {
		e.Spawn(NewTask(&stepFuture{n: 1}))
	})
}

func TestCompletedTaskLeavesTableAndCacheTogether(t *testing.T) {
	e := newTestExecutor(&fakeCPU{}, 64)

	// task i completes on poll i+1 and yields until then
	const n = 8
	for i := 0; i < n; i++ {
		e.Spawn(NewTask(&stepFuture{n: i + 1, yield: true}))
	}

	for step := 0; len(e.tasks) > 0; step++ {
		id, ok := e.ready.Pop()
		require.True(t, ok, "ready queue drained with %d live tasks", len(e.tasks))
		tk, live := e.tasks[id]
		if !live {
			continue
		}
		tasksBefore := len(e.tasks)
		if e.poll(id, tk, 0) == Ready {
			_, cached := e.wakers[id]
			require.True(t, cached, "polled task must have a cached waker")
			wakersBefore := len(e.wakers)
			e.remove(id)
			require.Equal(t, tasksBefore-1, len(e.tasks), "step %d", step)
			require.Equal(t, wakersBefore-1, len(e.wakers), "step %d", step)
		}

		require.LessOrEqual(t, len(e.wakers), len(e.tasks), "step %d", step)
		for cached := range e.wakers {
			_, live := e.tasks[cached]
			require.True(t, live, "waker cached for dead %s", cached)
		}
		if step >= n {
			// every live task has been polled at least once
			require.Equal(t, len(e.tasks), len(e.wakers), "step %d", step)
		}
		s := e.Stats()
		require.Equal(t, len(e.tasks), s.Tasks)
		require.Equal(t, len(e.wakers), s.Wakers)
	}
	require.Empty(t, e.wakers)
}

func TestRunReadyCompletesOnce(t *testing.T) {
	e := newTestExecutor(&fakeCPU{}, 8)
	f := &stepFuture{n: 1}
	tk := NewTask(f)
	e.Spawn(tk)

	// a second wake queued before the first poll
	w, ok := e.WakerFor(tk.ID())
	require.True(t, ok)
	w.Wake()

	e.RunReady()
	require.Equal(t, 1, f.polls)
	s := e.Stats()
	require.EqualValues(t, 1, s.Completed)
	require.EqualValues(t, 1, s.StaleWakes)
	require.Zero(t, s.Tasks)
	require.Zero(t, s.Wakers)
}

func TestStaleReadyEntryIsSkipped(t *testing.T) {
	e := newTestExecutor(&fakeCPU{}, 8)
	f := &stepFuture{n: 100}
	tk := NewTask(f)
	e.Spawn(tk)
	e.RunReady()
	require.Equal(t, 1, f.polls)

	// remove the task out of band, then replay its ID through the queue
	w, ok := e.WakerFor(tk.ID())
	require.True(t, ok)
	e.remove(tk.ID())
	w.Wake()

	require.NotPanics(t, e.RunReady)
	require.Equal(t, 1, f.polls)
	require.EqualValues(t, 1, e.Stats().StaleWakes)
	require.Zero(t, e.ReadyLen())
}

func TestIdleCheckDoesNotHaltWithQueuedWork(t *testing.T) {
	cpu := &fakeCPU{}
	e := newTestExecutor(cpu, 4)
	e.Spawn(NewTask(&stepFuture{n: 1}))

	e.sleepIfIdle()
	require.Equal(t, []string{"cli", "sti"}, cpu.calls)
	require.Zero(t, cpu.halts)
	require.Equal(t, 1, e.ReadyLen())
}

func TestIdleCheckHaltsOnlyWhenEmpty(t *testing.T) {
	cpu := &fakeCPU{}
	e := newTestExecutor(cpu, 4)
	e.sleepIfIdle()
	require.Equal(t, []string{"cli", "sti;hlt"}, cpu.calls)
	require.EqualValues(t, 1, e.Stats().Halts)
}

func TestWakeBeforeOtherTaskEverPolled(t *testing.T) {
	e := newTestExecutor(&fakeCPU{}, 8)
	a := &stepFuture{n: 5}
	b := &stepFuture{n: 5}
	ta, tb := NewTask(a), NewTask(b)
	e.Spawn(ta)
	e.Spawn(tb)

	// drain A's initial entry without polling it, so A has never been ready
	// from a wake while B is woken first
	first, ok := e.ready.Pop()
	require.True(t, ok)
	require.Equal(t, ta.ID(), first)

	wb, ok := e.WakerFor(tb.ID())
	require.True(t, ok)
	wb.Wake()

	require.NotPanics(t, e.RunReady)
	require.Zero(t, a.polls)
	require.Equal(t, 2, b.polls)
	require.Equal(t, 2, e.Stats().Tasks)
}

func TestPendingTaskWaitsForItsWaker(t *testing.T) {
	e := newTestExecutor(&fakeCPU{}, 4)
	f := &stepFuture{n: 2}
	e.Spawn(NewTask(f))

	e.RunReady()
	e.RunReady()
	require.Equal(t, 1, f.polls, "no wake, no poll")

	f.saved.Wake()
	e.RunReady()
	require.Equal(t, 2, f.polls)
	require.Zero(t, e.Stats().Tasks)
	require.EqualValues(t, 1, e.Stats().IdleWakeups)
}

func TestRunDrainsAfterEachWake(t *testing.T) {
	f := &stepFuture{n: 3}
	cpu := &fakeCPU{}
	cpu.onHalt = powerOffAfter(3, func(int) {
		// an interrupt handler waking the task during the halt
		if f.saved != nil && f.polls < f.n {
			f.saved.Wake()
		}
	})
	e := newTestExecutor(cpu, 4)
	e.Spawn(NewTask(f))

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Run()
	}()
	<-done

	require.Equal(t, 3, f.polls)
	require.Equal(t, 3, cpu.halts)
	require.Zero(t, e.Stats().Tasks)
}
