package machine

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"ember/internal/trace"
)

// Handler services one interrupt vector. It runs with interrupts disabled
// and must call EndOfInterrupt before the vector can be delivered again.
type Handler func(vector uint8)

const vectors = 256

// Stats counts hardware events.
type Stats struct {
	Deliveries uint64 `json:"deliveries"`
	EOIs       uint64 `json:"eois"`
	Halts      uint64 `json:"halts"`
	Unhandled  uint64 `json:"unhandled"`
	Masked     uint64 `json:"masked"`
	Dropped    uint64 `json:"dropped"` // device bytes lost to a full controller buffer
}

// Machine is a simulated boot processor with its interrupt controllers and
// devices. The zero value is not usable; call New.
type Machine struct {
	mu   sync.Mutex
	cond *sync.Cond

	interruptsOn bool
	delivering   bool
	halted       bool
	off          bool
	deliveries   uint64

	pending   [vectors]bool
	inService [vectors]bool
	idt       [vectors]Handler
	redirect  map[uint8]redirection

	kbd keyboardController

	tracer trace.Tracer

	eois, halts, unhandled, masked, dropped atomic.Uint64
}

// New returns a powered-on machine with interrupts disabled, an empty IDT
// and every IRQ masked.
func New(tracer trace.Tracer) *Machine {
	if tracer == nil {
		tracer = trace.Nop
	}
	m := &Machine{
		redirect: make(map[uint8]redirection),
		tracer:   tracer,
	}
	m.cond = sync.NewCond(&m.mu)
	m.kbd.limit = DeviceBufferSize
	return m
}

// SetHandler installs h in the IDT slot for vector.
func (m *Machine) SetHandler(vector uint8, h Handler) {
	m.mu.Lock()
	m.idt[vector] = h
	m.mu.Unlock()
}

// Raise asserts vector at the local APIC. The interrupt is delivered now if
// interrupts are enabled, otherwise it stays pending until they are.
func (m *Machine) Raise(vector uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[vector] = true
	m.dispatchLocked()
}

// DisableInterrupts clears the interrupt flag (cli). It waits for a handler
// running on another goroutine to return first. Handlers must not call it.
func (m *Machine) DisableInterrupts() {
	m.mu.Lock()
	for m.delivering {
		m.cond.Wait()
	}
	m.interruptsOn = false
	m.mu.Unlock()
}

// EnableInterrupts sets the interrupt flag (sti) and delivers whatever is
// pending on the calling goroutine.
func (m *Machine) EnableInterrupts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interruptsOn = true
	m.dispatchLocked()
}

// InterruptsEnabled reports the interrupt flag.
func (m *Machine) InterruptsEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interruptsOn
}

// EnableAndHalt sets the interrupt flag and halts until the next interrupt
// is delivered (sti; hlt). The two steps are atomic: an interrupt that was
// pending when it is called is delivered at once and no halt happens.
//
// After PowerOff, a halt never wakes: the calling goroutine exits.
func (m *Machine) EnableAndHalt() {
	m.mu.Lock()
	m.interruptsOn = true
	if m.deliverableLocked() >= 0 {
		m.dispatchLocked()
		m.mu.Unlock()
		return
	}

	m.halts.Add(1)
	m.halted = true
	m.cond.Broadcast()
	seen := m.deliveries
	// a delivery wakes the CPU once its handler has returned
	for (m.deliveries == seen || m.delivering) && !m.off {
		m.cond.Wait()
	}
	m.halted = false
	off := m.off
	m.mu.Unlock()

	if off {
		runtime.Goexit()
	}
}

// Halted reports whether the CPU is waiting in hlt.
func (m *Machine) Halted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.halted
}

// Quiescent reports whether the CPU is halted with no handler running and
// nothing deliverable. A halted CPU stays halted while a handler raised from
// another goroutine runs, so Halted alone does not mean the machine is idle.
func (m *Machine) Quiescent() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.halted && !m.delivering && m.deliverableLocked() < 0
}

// WaitHalted blocks until the CPU halts or the machine powers off.
func (m *Machine) WaitHalted() {
	m.mu.Lock()
	for !m.halted && !m.off {
		m.cond.Wait()
	}
	m.mu.Unlock()
}

// PowerOff stops the machine. A CPU that is halted, or halts later, never
// resumes.
func (m *Machine) PowerOff() {
	m.mu.Lock()
	m.off = true
	m.cond.Broadcast()
	m.mu.Unlock()
}

// EndOfInterrupt signals the local APIC that the highest-priority in-service
// vector has been handled.
func (m *Machine) EndOfInterrupt() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for v := vectors - 1; v >= 0; v-- {
		if m.inService[v] {
			m.inService[v] = false
			m.eois.Add(1)
			break
		}
	}
	m.dispatchLocked()
}

// Stats returns the event counters.
func (m *Machine) Stats() Stats {
	m.mu.Lock()
	deliveries := m.deliveries
	m.mu.Unlock()
	return Stats{
		Deliveries: deliveries,
		EOIs:       m.eois.Load(),
		Halts:      m.halts.Load(),
		Unhandled:  m.unhandled.Load(),
		Masked:     m.masked.Load(),
		Dropped:    m.dropped.Load(),
	}
}

// deliverableLocked returns the highest pending vector that is not in
// service, or -1.
func (m *Machine) deliverableLocked() int {
	for v := vectors - 1; v >= 0; v-- {
		if m.pending[v] && !m.inService[v] {
			return v
		}
	}
	return -1
}

// dispatchLocked delivers pending interrupts one after another while the
// interrupt flag is set. m.mu is released around each handler call.
func (m *Machine) dispatchLocked() {
	for m.interruptsOn && !m.delivering && !m.off {
		v := m.deliverableLocked()
		if v < 0 {
			return
		}
		vector := uint8(v) //nolint:gosec // v < 256
		m.pending[v] = false
		m.inService[v] = true
		m.interruptsOn = false
		m.delivering = true
		m.deliveries++
		h := m.idt[v]
		m.mu.Unlock()

		m.deliver(vector, h)

		m.mu.Lock()
		m.delivering = false
		m.interruptsOn = true // iretq restores the flag
		m.cond.Broadcast()
	}
}

func (m *Machine) deliver(vector uint8, h Handler) {
	if h == nil {
		// no gate: acknowledge and carry on rather than triple fault
		m.unhandled.Add(1)
		trace.Warn(m.tracer, trace.ScopeInterrupt, "unhandled interrupt",
			fmt.Sprintf("vector %d has no handler", vector))
		m.mu.Lock()
		m.inService[vector] = false
		m.mu.Unlock()
		return
	}
	span := trace.Begin(m.tracer, trace.ScopeInterrupt, vectorName(vector), 0)
	h(vector)
	span.End("")
}

func vectorName(v uint8) string {
	switch v {
	case VectorTimer:
		return "irq timer"
	case VectorKeyboard:
		return "irq keyboard"
	}
	return fmt.Sprintf("irq %d", v)
}
