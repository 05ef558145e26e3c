package task

import (
	"errors"
	"fmt"
	"sync/atomic"

	"ember/internal/lockfree"
	"ember/internal/trace"
)

// ErrDuplicateTask is the panic value raised when Spawn sees an ID that is
// already in the task table. IDs come from NewTaskID, so this is a bug.
var ErrDuplicateTask = errors.New("task: task with same ID already spawned")

// DefaultQueueCapacity is the ready queue size used when Config leaves it zero.
const DefaultQueueCapacity = 100

// CPU is the slice of the processor the executor needs to idle safely.
//
// EnableAndHalt must enable interrupts and halt as one indivisible step: an
// interrupt that became pending while interrupts were disabled must end the
// halt rather than wait for the next one.
type CPU interface {
	DisableInterrupts()
	EnableInterrupts()
	EnableAndHalt()
}

// Config configures an Executor.
type Config struct {
	QueueCapacity int
	Tracer        trace.Tracer
}

// Stats is a point-in-time view of executor bookkeeping.
type Stats struct {
	Tasks       int    `json:"tasks"`
	Wakers      int    `json:"wakers"`
	Ready       int    `json:"ready"`
	QueueCap    int    `json:"queue_cap"`
	Polls       uint64 `json:"polls"`
	Completed   uint64 `json:"completed"`
	StaleWakes  uint64 `json:"stale_wakes"`
	Drains      uint64 `json:"drains"`
	IdleWakeups uint64 `json:"idle_wakeups"`
	Halts       uint64 `json:"halts"`
}

// counters mirror the executor's private state for readers on other
// goroutines (status displays); the executor is the only writer.
type counters struct {
	tasks, wakers                                atomic.Int64
	polls, completed, stale, drains, idle, halts atomic.Uint64
}

// Executor owns the live tasks and polls the ones that are ready.
//
// The task table and the waker cache belong to the goroutine that calls Run;
// only the ready queue is shared with wakers.
type Executor struct {
	tasks  map[TaskID]*Task
	ready  *lockfree.ArrayQueue[TaskID]
	wakers map[TaskID]*TaskWaker
	cpu    CPU
	tracer trace.Tracer

	stats counters
}

// NewExecutor builds an executor that idles through cpu.
func NewExecutor(cpu CPU, cfg Config) (*Executor, error) {
	if cpu == nil {
		return nil, errors.New("task: nil CPU")
	}
	capacity := cfg.QueueCapacity
	if capacity == 0 {
		capacity = DefaultQueueCapacity
	}
	ready, err := lockfree.NewArrayQueue[TaskID](capacity)
	if err != nil {
		return nil, fmt.Errorf("task: ready queue: %w", err)
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	return &Executor{
		tasks:  make(map[TaskID]*Task),
		ready:  ready,
		wakers: make(map[TaskID]*TaskWaker),
		cpu:    cpu,
		tracer: tracer,
	}, nil
}

// Spawn hands t to the executor and queues it for its first poll.
//
// Spawn panics with ErrDuplicateTask if t's ID is already live and with
// ErrTaskQueueFull if the ready queue cannot take it.
func (e *Executor) Spawn(t *Task) {
	id := t.ID()
	if _, dup := e.tasks[id]; dup {
		panic(fmt.Errorf("%w: %s", ErrDuplicateTask, id))
	}
	e.tasks[id] = t
	e.stats.tasks.Add(1)
	if err := e.ready.Push(id); err != nil {
		panic(ErrTaskQueueFull)
	}
	trace.Point(e.tracer, trace.ScopeExecutor, "spawn", t.Name())
}

// Run alternates between polling ready tasks and halting the CPU. It never
// returns.
func (e *Executor) Run() {
	for {
		e.RunReady()
		e.sleepIfIdle()
	}
}

// RunReady polls every task whose ID is in the ready queue, including IDs
// that are pushed while it runs, and returns once the queue is empty.
func (e *Executor) RunReady() {
	if e.ready.IsEmpty() {
		e.stats.idle.Add(1)
		return
	}
	e.stats.drains.Add(1)
	span := trace.Begin(e.tracer, trace.ScopeExecutor, "drain", 0)
	polled := 0

	for {
		id, ok := e.ready.Pop()
		if !ok {
			break
		}
		t, live := e.tasks[id]
		if !live {
			// woken after it completed
			e.stats.stale.Add(1)
			continue
		}

		polled++
		if e.poll(id, t, span.ID()) == Ready {
			e.remove(id)
			e.stats.completed.Add(1)
		}
	}

	if span.Active() {
		span.WithExtra("polled", fmt.Sprint(polled))
	}
	span.End("")
}

// remove drops a completed task from the table and the waker cache together.
func (e *Executor) remove(id TaskID) {
	delete(e.tasks, id)
	e.stats.tasks.Add(-1)
	if _, ok := e.wakers[id]; ok {
		delete(e.wakers, id)
		e.stats.wakers.Add(-1)
	}
}

func (e *Executor) wakerFor(id TaskID) *TaskWaker {
	w, ok := e.wakers[id]
	if !ok {
		w = newTaskWaker(id, e.ready)
		e.wakers[id] = w
		e.stats.wakers.Add(1)
	}
	return w
}

func (e *Executor) poll(id TaskID, t *Task, parent uint64) Poll {
	w := e.wakerFor(id)
	e.stats.polls.Add(1)

	span := trace.BeginTask(e.tracer, trace.ScopeTask, t.Name(), parent, uint64(id))
	res := t.Poll(NewContext(w))
	span.End(res.String())
	return res
}

// sleepIfIdle halts until the next interrupt if no task is ready.
//
// The emptiness check runs with interrupts disabled. A wake that arrives
// after the check is held pending by the CPU and ends the halt, because
// enabling interrupts and halting happen as one step.
func (e *Executor) sleepIfIdle() {
	e.cpu.DisableInterrupts()
	if e.ready.IsEmpty() {
		e.stats.halts.Add(1)
		e.cpu.EnableAndHalt()
		return
	}
	e.cpu.EnableInterrupts()
}

// WakerFor returns the cached waker of a live task, creating it on first
// use. ok is false when id is not live. Like Spawn, it must be called from
// the goroutine that runs the executor.
func (e *Executor) WakerFor(id TaskID) (*TaskWaker, bool) {
	if _, live := e.tasks[id]; !live {
		return nil, false
	}
	return e.wakerFor(id), true
}

// Stats returns a snapshot of the executor counters. Safe from any goroutine.
func (e *Executor) Stats() Stats {
	return Stats{
		Tasks:       int(e.stats.tasks.Load()),
		Wakers:      int(e.stats.wakers.Load()),
		Ready:       e.ready.Len(),
		QueueCap:    e.ready.Cap(),
		Polls:       e.stats.polls.Load(),
		Completed:   e.stats.completed.Load(),
		StaleWakes:  e.stats.stale.Load(),
		Drains:      e.stats.drains.Load(),
		IdleWakeups: e.stats.idle.Load(),
		Halts:       e.stats.halts.Load(),
	}
}

// ReadyLen reports the number of queued IDs. Safe from any goroutine.
func (e *Executor) ReadyLen() int {
	return e.ready.Len()
}
