// Package fuzztests houses Go fuzz harnesses for the kernel's input paths:
// arbitrary scancode streams through the decoder, layout and keyboard task,
// arbitrary bytes through the console, and arbitrary text through the input
// script parser. They guard against panics and lost bytes.
package fuzztests
