// Package machine simulates the parts of a single x86 boot processor the
// kernel touches: the interrupt flag, hlt, the local APIC in-service bits,
// IOAPIC routing, the 8042 keyboard controller ports and a periodic timer.
//
// Interrupt handlers run on the goroutine that raised the line or that
// re-enabled interrupts, with the interrupt flag clear, one at a time.
package machine
