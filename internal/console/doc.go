// Package console provides the kernel's text output: a fixed-size text grid
// with a cursor, the stdin buffer fed by the keyboard task, and the serial
// mirror.
package console
