// Package input drives the simulated keyboard from scripts and recorded
// captures.
//
// A script is line oriented; words are split with shell quoting rules and
// '#' starts a comment:
//
//	type "hello, world"   # press and release the keys for each character
//	key Enter             # tap a key by name
//	key LShift down       # or hold/release it
//	raw e0 4b             # send scancode bytes verbatim
//	wait 50ms             # pause
package input
