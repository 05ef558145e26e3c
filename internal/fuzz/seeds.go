package fuzztests

import (
	"testing"
)

const maxFuzzInput = 4 << 10 // 4 KiB

// scancodeSeeds are byte streams a real keyboard could send, plus junk.
var scancodeSeeds = [][]byte{
	{0x1E, 0x9E, 0x30, 0xB0, 0x2E, 0xAE},             // a b c
	{0x2A, 0x1E, 0x9E, 0xAA},                         // shift+a
	{0xE0, 0x4B, 0xE0, 0xCB, 0xE0, 0x53, 0xE0, 0xD3}, // left, delete
	{0x3A, 0xBA, 0x10, 0x90},                         // caps lock, q
	{0xE0, 0xE0, 0xE0},                               // repeated prefixes
	{0xFF, 0x00, 0x80, 0x7F},
}

var scriptSeeds = []string{
	"type \"hello\"\nkey Enter\n",
	"key LShift down\nkey A\nkey LShift up\n",
	"raw e0 4b 0xCB\nwait 1ms\n",
	"# comment only\n\n",
	"type 'it''s'\n",
	"type \"unterminated\n",
}

func addScancodeSeeds(f *testing.F) {
	for _, s := range scancodeSeeds {
		f.Add(s)
	}
}

func addScriptSeeds(f *testing.F) {
	for _, s := range scriptSeeds {
		f.Add(s)
	}
}

func clip(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}
