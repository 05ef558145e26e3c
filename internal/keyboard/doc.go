// Package keyboard carries scancodes from the keyboard interrupt handler to
// the task that interprets them.
//
// The interrupt side calls AddScancode (or Queue.Add) once per IRQ1. The
// task side polls a Stream, which either returns the next byte or registers
// the task's waker and reports Pending. The stream registers before it
// re-checks the queue, so a byte pushed at any point during a poll is either
// returned by that poll or followed by a wake.
//
// The rest of the package decodes scancode set 1 for a US 104-key layout and
// provides the consumer task that echoes keys to the console.
package keyboard
