// Package interrupt installs the kernel's hardware interrupt handlers.
package interrupt

import (
	"ember/internal/machine"
)

// Index is an IDT vector used by a hardware interrupt.
type Index uint8

const (
	Timer    Index = Index(machine.VectorTimer)
	Keyboard Index = Index(machine.VectorKeyboard)
)

// Controller acknowledges interrupts at the local APIC.
type Controller interface {
	EndOfInterrupt()
}

// Ports reads I/O ports.
type Ports interface {
	ReadPort(port uint16) byte
}

// Sink accepts one scancode. It must not block or allocate.
type Sink func(b byte)

// KeyboardHandler reads one byte from the keyboard controller, hands it to
// sink and acknowledges the interrupt.
func KeyboardHandler(ctrl Controller, ports Ports, sink Sink) machine.Handler {
	return func(uint8) {
		sink(ports.ReadPort(machine.PortKeyboardData))
		ctrl.EndOfInterrupt()
	}
}

// TimerHandler only acknowledges the tick; its purpose is to end a halt.
func TimerHandler(ctrl Controller) machine.Handler {
	return func(uint8) {
		ctrl.EndOfInterrupt()
	}
}

// Install fills the IDT slots for the timer and keyboard and routes IRQ0
// and IRQ1 to them. Interrupts stay disabled; the caller enables them.
func Install(m *machine.Machine, sink Sink) {
	m.SetHandler(uint8(Timer), TimerHandler(m))
	m.SetHandler(uint8(Keyboard), KeyboardHandler(m, m, sink))
	m.Route(machine.IRQTimer, uint8(Timer))
	m.Route(machine.IRQKeyboard, uint8(Keyboard))
}
