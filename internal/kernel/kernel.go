package kernel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"ember/internal/console"
	"ember/internal/interrupt"
	"ember/internal/keyboard"
	"ember/internal/machine"
	"ember/internal/observ"
	"ember/internal/task"
	"ember/internal/trace"
)

var (
	// ErrNotBooted is returned by operations that need a booted kernel.
	ErrNotBooted = errors.New("kernel: not booted")
	// ErrAlreadyBooted is returned by a second Boot.
	ErrAlreadyBooted = errors.New("kernel: already booted")
)

// Options configures New.
type Options struct {
	Config Config
	Tracer trace.Tracer
	// Serial receives a copy of all console output. Nil disables the mirror.
	Serial io.Writer
	// Queue is the scancode queue IRQ1 feeds. Nil means keyboard.Scancodes.
	Queue *keyboard.Queue
	// Tasks are spawned after the keyboard task.
	Tasks []*task.Task
}

// Kernel is one boot of the simulated machine.
type Kernel struct {
	cfg    Config
	tracer trace.Tracer
	serial io.Writer
	extra  []*task.Task

	cpu      *machine.Machine
	queue    *keyboard.Queue
	exec     *task.Executor
	screen   *console.TextRenderer
	stdin    *console.InputBuffer
	consumer *keyboard.Consumer
	timings  *observ.Timer

	booted  bool
	started bool
	done    chan struct{}
}

// New prepares a kernel. Nothing is initialised until Boot.
func New(opts Options) (*Kernel, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	queue := opts.Queue
	if queue == nil {
		queue = &keyboard.Scancodes
	}
	return &Kernel{
		cfg:     opts.Config,
		tracer:  tracer,
		serial:  opts.Serial,
		extra:   opts.Tasks,
		cpu:     machine.New(tracer),
		queue:   queue,
		timings: observ.NewTimer(),
		done:    make(chan struct{}),
	}, nil
}

// Boot runs the init sequence. The scancode queue is initialised before
// IRQ1 is routed so the handler never sees it uninitialised. Interrupts are
// enabled last.
func (k *Kernel) Boot() error {
	if k.booted {
		return ErrAlreadyBooted
	}
	span := trace.Begin(k.tracer, trace.ScopeKernel, "boot", 0)
	defer span.End("")

	steps := []struct {
		name string
		run  func() (string, error)
	}{
		{"console", k.initConsole},
		{"scancode queue", k.initQueue},
		{"interrupts", k.initInterrupts},
		{"executor", k.initExecutor},
		{"tasks", k.spawnTasks},
	}
	for _, step := range steps {
		done := k.timings.Track(step.name)
		phase := trace.Begin(k.tracer, trace.ScopeKernel, step.name, span.ID())
		note, err := step.run()
		phase.End(note)
		done(note)
		if err != nil {
			return fmt.Errorf("kernel: boot %s: %w", step.name, err)
		}
		k.printf("%s initialized\n", step.name)
	}

	k.cpu.EnableInterrupts()
	k.booted = true
	return nil
}

func (k *Kernel) initConsole() (string, error) {
	c := k.cfg.Console
	k.screen = console.NewTextRenderer(c.Rows, c.Cols, k.serial)
	stdin, err := console.NewInputBuffer(c.Stdin)
	if err != nil {
		return "", err
	}
	k.stdin = stdin
	return fmt.Sprintf("%dx%d", c.Rows, c.Cols), nil
}

func (k *Kernel) initQueue() (string, error) {
	if err := k.queue.Init(k.cfg.Keyboard.QueueCapacity, k.tracer); err != nil {
		return "", err
	}
	return fmt.Sprintf("capacity %d", k.queue.Cap()), nil
}

func (k *Kernel) initInterrupts() (string, error) {
	interrupt.Install(k.cpu, k.queue.Add)
	return fmt.Sprintf("vectors %d,%d", interrupt.Timer, interrupt.Keyboard), nil
}

func (k *Kernel) initExecutor() (string, error) {
	exec, err := task.NewExecutor(k.cpu, task.Config{
		QueueCapacity: k.cfg.Executor.QueueCapacity,
		Tracer:        k.tracer,
	})
	if err != nil {
		return "", err
	}
	k.exec = exec
	return fmt.Sprintf("ready queue %d", exec.Stats().QueueCap), nil
}

func (k *Kernel) spawnTasks() (string, error) {
	stream, err := k.queue.Stream()
	if err != nil {
		return "", err
	}
	k.consumer = keyboard.NewConsumer(stream, keyboard.ConsumerConfig{
		Terminal: k.screen,
		Serial:   k.serial,
		Stdin:    k.stdin,
		Tracer:   k.tracer,
	})
	k.exec.Spawn(task.NewNamedTask("keyboard", k.consumer))
	for _, t := range k.extra {
		k.exec.Spawn(t)
	}
	return fmt.Sprintf("%d tasks", 1+len(k.extra)), nil
}

func (k *Kernel) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(k.screen, format, args...)
}

// Run hands the calling goroutine to the executor. It never returns; after
// PowerOff the goroutine exits at its next halt.
func (k *Kernel) Run() {
	if !k.booted {
		panic(ErrNotBooted)
	}
	k.exec.Run()
}

// Start runs the kernel on a new goroutine. The returned channel closes
// when that goroutine ends.
func (k *Kernel) Start() (<-chan struct{}, error) {
	if !k.booted {
		return nil, ErrNotBooted
	}
	if k.started {
		return k.done, nil
	}
	k.started = true
	go func() {
		defer close(k.done)
		k.Run()
	}()
	return k.done, nil
}

// PowerOff stops the machine.
func (k *Kernel) PowerOff() {
	k.cpu.PowerOff()
}

// Inject sends scancodes from the keyboard device.
func (k *Kernel) Inject(scancodes ...byte) int {
	return k.cpu.Inject(scancodes...)
}

// WaitIdle blocks until every injected byte has been consumed and the CPU
// is halted with nothing ready, or ctx is done.
func (k *Kernel) WaitIdle(ctx context.Context) error {
	if !k.booted {
		return ErrNotBooted
	}
	tick := time.NewTicker(time.Millisecond)
	defer tick.Stop()
	for {
		if k.idle() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}

func (k *Kernel) idle() bool {
	return k.cpu.DeviceBuffered() == 0 &&
		k.queue.Len() == 0 &&
		k.exec.ReadyLen() == 0 &&
		k.cpu.Quiescent()
}

// Main boots, runs the kernel and the timer until ctx is done, then powers
// off and waits for the CPU to stop.
func (k *Kernel) Main(ctx context.Context) error {
	if !k.booted {
		if err := k.Boot(); err != nil {
			return err
		}
	}
	done, err := k.Start()
	if err != nil {
		return err
	}

	hb := trace.StartHeartbeat(k.tracer, k.cfg.Trace.Heartbeat.Duration, k.heartbeat)
	defer hb.Stop()

	g, gctx := errgroup.WithContext(ctx)
	if iv := k.cfg.Timer.Interval.Duration; iv > 0 {
		g.Go(func() error { return k.cpu.RunTimer(gctx, iv) })
	}
	g.Go(func() error {
		<-gctx.Done()
		k.PowerOff()
		<-done
		return nil
	})
	return g.Wait()
}

// Machine exposes the simulated hardware.
func (k *Kernel) Machine() *machine.Machine { return k.cpu }

// Screen returns the console, nil before Boot.
func (k *Kernel) Screen() *console.TextRenderer { return k.screen }

// Stdin returns the typed-input buffer, nil before Boot.
func (k *Kernel) Stdin() *console.InputBuffer { return k.stdin }

// Config returns the configuration the kernel was built with.
func (k *Kernel) Config() Config { return k.cfg }

// Timings returns the boot phase timer.
func (k *Kernel) Timings() *observ.Timer { return k.timings }
