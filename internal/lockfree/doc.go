// Package lockfree holds the primitives that are shared across the
// interrupt/scheduler boundary.
//
// Nothing in this package blocks, spins on a lock, or allocates after
// construction, so every operation may be invoked from an interrupt handler
// that preempted the code currently using the same value.
//
//   - ArrayQueue: bounded FIFO with per-slot sequence numbers.
//   - OnceCell: one-time initialisation with detected use-before-init.
package lockfree
