// Package task is the cooperative scheduler of the kernel.
//
// A Task owns one Future. The Executor polls tasks whose IDs sit in its
// bounded ready queue; a task that returns Pending is not polled again until
// something calls the Waker it was handed. Interrupt handlers never touch
// tasks directly: they only push TaskIDs, through a TaskWaker, into the ready
// queue, which is lock-free.
//
// When the ready queue is empty the executor masks interrupts, checks the
// queue once more and then executes an atomic enable-and-halt. A wake that
// lands between the check and the halt is therefore still delivered as an
// interrupt that ends the halt.
package task
