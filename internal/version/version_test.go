package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersionDefault(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestColoredPlainWhenColorDisabled(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = saved })

	tests := map[string]string{
		"0.1.0-dev": "0.1.0-dev",
		"1.2.3":     "1.2.3",
		"dev":       "dev",
	}
	for in, want := range tests {
		if got := Colored(in); got != want {
			t.Errorf("Colored(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestColoredAddsEscapes(t *testing.T) {
	saved := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = saved })

	if got := Colored("1.2.3"); got == "1.2.3" {
		t.Error("expected ANSI escapes around version components")
	}
}
