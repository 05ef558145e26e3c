package input

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ember/internal/keyboard"
	"ember/internal/trace"
)

func TestParseScript(t *testing.T) {
	src := `
# greeting
type "hi there"
key Enter
key LShift down   # hold
key LShift up
raw e0 0x4B
wait 5ms
`
	steps, err := ParseScript(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, steps, 6)

	hi, err := TypeText("hi there")
	require.NoError(t, err)
	require.Equal(t, hi, steps[0].Bytes)
	require.Equal(t, 3, steps[0].Line)

	require.Equal(t, []byte{0x1C, 0x9C}, steps[1].Bytes)
	require.Equal(t, []byte{0x2A}, steps[2].Bytes)
	require.Equal(t, []byte{0xAA}, steps[3].Bytes)
	require.Equal(t, []byte{0xE0, 0x4B}, steps[4].Bytes)
	require.Equal(t, 5*time.Millisecond, steps[5].Wait)
}

func TestParseScriptErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"jump", "unknown command"},
		{"key Hyper", "unknown key"},
		{"key A sideways", "unknown action"},
		{"raw zz", "raw"},
		{"wait soon", "wait"},
		{"type", "missing text"},
		{`type "ü"`, "no key"},
		{`type "open`, "line 1"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := ParseScript(strings.NewReader(tt.src))
			require.ErrorContains(t, err, tt.want)
			var se *ScriptError
			require.True(t, errors.As(err, &se))
			require.Equal(t, 1, se.Line)
		})
	}
}

func TestTypeTextShift(t *testing.T) {
	b, err := TypeText("A")
	require.NoError(t, err)
	require.Equal(t, []byte{0x2A, 0x1E, 0x9E, 0xAA}, b)
}

func TestPlayInjectsBytesInOrder(t *testing.T) {
	steps := []Step{{Bytes: []byte{1, 2}}, {Wait: time.Millisecond}, {Bytes: []byte{3}}}
	var got []byte
	err := Play(context.Background(), steps, func(b ...byte) int {
		got = append(got, b...)
		return len(b)
	})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, got)
}

func TestPlayStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Play(ctx, []Step{{Wait: time.Hour}}, func(...byte) int { return 0 })
	require.ErrorIs(t, err, context.Canceled)
}

func TestPlayReportsDrops(t *testing.T) {
	err := Play(context.Background(), []Step{{Line: 4, Bytes: []byte{0x1E}}}, func(...byte) int { return 0 })
	require.ErrorContains(t, err, "line 4")
}

func TestPlayTracesSteps(t *testing.T) {
	ring := trace.NewRingTracer(16, trace.LevelBoot)
	ctx := trace.WithTracer(context.Background(), ring)
	steps := []Step{{Line: 1, Bytes: []byte{0x1E, 0x9E}}, {Line: 2, Wait: time.Millisecond}}
	require.NoError(t, Play(ctx, steps, func(b ...byte) int { return len(b) }))

	events := ring.Snapshot()
	require.Len(t, events, 2)
	require.Equal(t, "input.inject", events[0].Name)
	require.Equal(t, "line 1: 1e 9e", events[0].Detail)
	require.Equal(t, "input.wait", events[1].Name)
}

func TestScriptDrivesKeyboard(t *testing.T) {
	steps, err := ParseScript(strings.NewReader(`type "Go!"` + "\nkey Enter\n"))
	require.NoError(t, err)

	kbd := keyboard.NewKeyboard()
	var out []rune
	err = Play(context.Background(), steps, func(bs ...byte) int {
		for _, b := range bs {
			if ev, ok := kbd.AddByte(b); ok {
				if key, ok := kbd.Process(ev); ok && !key.IsRaw {
					out = append(out, key.Rune)
				}
			}
		}
		return len(bs)
	})
	require.NoError(t, err)
	require.Equal(t, "Go!\n", string(out))
}
