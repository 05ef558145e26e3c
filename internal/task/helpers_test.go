package task

import "runtime"

// fakeCPU records the interrupt-flag protocol instead of executing it.
type fakeCPU struct {
	calls  []string
	halts  int
	onHalt func(halt int)
}

func (c *fakeCPU) DisableInterrupts() { c.calls = append(c.calls, "cli") }
func (c *fakeCPU) EnableInterrupts()  { c.calls = append(c.calls, "sti") }

func (c *fakeCPU) EnableAndHalt() {
	c.calls = append(c.calls, "sti;hlt")
	c.halts++
	if c.onHalt != nil {
		c.onHalt(c.halts)
	}
}

// powerOffAfter ends the goroutine running Executor.Run on the n-th halt.
func powerOffAfter(n int, before func(halt int)) func(int) {
	return func(halt int) {
		if before != nil {
			before(halt)
		}
		if halt >= n {
			runtime.Goexit()
		}
	}
}

// stepFuture completes on its n-th poll and yields (self-wakes) before that.
type stepFuture struct {
	polls int
	n     int
	yield bool
	saved Waker
}

func (f *stepFuture) Poll(cx *Context) Poll {
	f.polls++
	if f.polls >= f.n {
		return Ready
	}
	f.saved = cx.Waker()
	if f.yield {
		cx.Waker().Wake()
	}
	return Pending
}

func newTestExecutor(cpu CPU, capacity int) *Executor {
	e, err := NewExecutor(cpu, Config{QueueCapacity: capacity})
	if err != nil {
		panic(err)
	}
	return e
}
