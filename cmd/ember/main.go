package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ember/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "ember",
	Short: "Cooperative interrupt-driven kernel core on a simulated machine",
	Long: `ember boots a small kernel on a simulated x86 boot processor: an async
executor, interrupt-fed keyboard input and a text console.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupColor(cmd)
	},
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to ember.toml (default: search upward from the working directory)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show boot phase timings")

	rootCmd.PersistentFlags().String("cpu-profile", "", "write a host CPU profile to this file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a host heap profile to this file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to this file")

	rootCmd.PersistentFlags().String("trace", "", "trace output file (\"-\" for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "", "trace level (off|error|boot|detail|debug), overrides ember.toml")
	rootCmd.PersistentFlags().String("trace-mode", "", "trace storage (stream|ring|both), overrides ember.toml")
	rootCmd.PersistentFlags().Int("trace-ring-size", 0, "ring buffer size in events, overrides ember.toml")
	rootCmd.PersistentFlags().String("trace-format", "", "trace format (auto|text|ndjson), overrides ember.toml")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit a kernel heartbeat event at this interval, overrides ember.toml")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	switch mode {
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color %q (expected auto|on|off)", mode)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
