// Package kernel boots the simulated machine: it brings up the interrupt
// table, the scancode queue, the console and the executor, spawns the
// keyboard task and then hands the CPU to the executor for good.
package kernel
