package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ember/internal/console"
	"ember/internal/input"
	"ember/internal/kernel"
	"ember/internal/trace"
)

var (
	runScript string
	runReplay string
	runRecord string
	runKeys   string
	runFor    time.Duration
	runStats  bool
)

func init() {
	runCmd.Flags().StringVar(&runScript, "script", "", "input script to play after boot (overrides [input] script)")
	runCmd.Flags().StringVar(&runReplay, "replay", "", "capture file to replay after boot")
	runCmd.Flags().StringVar(&runRecord, "record", "", "write everything injected to this capture file")
	runCmd.Flags().StringVar(&runKeys, "keys", "", "text to type after boot")
	runCmd.Flags().DurationVar(&runFor, "for", 0, "keep running this long after input is consumed")
	runCmd.Flags().BoolVar(&runStats, "stats", false, "print a JSON snapshot of kernel counters on exit")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Boot the kernel, feed it keyboard input and print the screen",
	Args:  cobra.NoArgs,
	RunE:  runKernel,
}

func loadConfig(cmd *cobra.Command) (kernel.Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return kernel.Config{}, err
	}
	return kernel.ResolveConfig(path, ".")
}

func collectSteps(cfg kernel.Config) ([]input.Step, error) {
	var steps []input.Step
	script := cfg.Input.Script
	if runScript != "" {
		script = runScript
	}
	if script != "" {
		s, err := input.LoadScript(script)
		if err != nil {
			return nil, err
		}
		steps = append(steps, s...)
	}
	if runReplay != "" {
		c, err := input.LoadCapture(runReplay)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", runReplay, err)
		}
		steps = append(steps, c.Steps()...)
	}
	if runKeys != "" {
		b, err := input.TypeText(runKeys)
		if err != nil {
			return nil, fmt.Errorf("--keys: %w", err)
		}
		steps = append(steps, input.Step{Bytes: b})
	}
	return steps, nil
}

// openMirror opens the configured serial port, if any.
func openMirror(cfg kernel.Config) (io.Writer, func(), error) {
	if cfg.Console.Serial == "" {
		return nil, func() {}, nil
	}
	port, err := console.OpenSerial(cfg.Console.Serial, cfg.Console.Baud)
	if err != nil {
		return nil, nil, err
	}
	return port, func() { _ = port.Close() }, nil
}

func bootKernel(cmd *cobra.Command, cfg kernel.Config) (*kernel.Kernel, func(), error) {
	mirror, closeMirror, err := openMirror(cfg)
	if err != nil {
		return nil, nil, err
	}
	k, err := kernel.New(kernel.Options{
		Config: cfg,
		Tracer: trace.FromContext(cmd.Context()),
		Serial: mirror,
	})
	if err != nil {
		closeMirror()
		return nil, nil, err
	}
	if err := k.Boot(); err != nil {
		closeMirror()
		return nil, nil, err
	}
	return k, closeMirror, nil
}

func runKernel(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	steps, err := collectSteps(cfg)
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, &cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	k, closeMirror, err := bootKernel(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeMirror()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	kctx, stopKernel := context.WithCancel(ctx)
	defer stopKernel()

	var rec *input.Recorder
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return k.Main(kctx) })
	g.Go(func() error {
		defer stopKernel()
		inject := input.InjectFunc(k.Inject)
		if runRecord != "" {
			rec = input.NewRecorder(inject)
			inject = rec.Inject
		}
		if err := input.Play(gctx, steps, inject); err != nil {
			return err
		}
		if err := k.WaitIdle(gctx); err != nil {
			return err
		}
		if runFor > 0 {
			select {
			case <-gctx.Done():
			case <-time.After(runFor):
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if rec != nil {
		if err := input.SaveCapture(runRecord, rec.Capture()); err != nil {
			return fmt.Errorf("record: %w", err)
		}
	}
	return report(cmd, k)
}

func report(cmd *cobra.Command, k *kernel.Kernel) error {
	flags := cmd.Root().PersistentFlags()
	quiet, _ := flags.GetBool("quiet")
	timings, _ := flags.GetBool("timings")

	out := colorable.NewColorableStdout()
	if !quiet {
		header := color.New(color.FgCyan, color.Bold)
		header.Fprintln(out, "screen")
		fmt.Fprintln(out, k.Screen().String())
	}
	if timings {
		fmt.Fprint(colorable.NewColorableStderr(), k.Timings().Summary())
	}

	snap, err := k.Snapshot()
	if err != nil {
		return err
	}
	if snap.Keyboard.Dropped > 0 {
		color.New(color.FgYellow).Fprintf(colorable.NewColorableStderr(),
			"warning: %d scancodes dropped, scancode queue full\n", snap.Keyboard.Dropped)
	}
	if runStats {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	if !quiet {
		typed := strings.TrimRight(string(k.Stdin().Drain()), "\n")
		if typed != "" {
			color.New(color.FgCyan, color.Bold).Fprintln(out, "stdin")
			fmt.Fprintln(out, typed)
		}
	}
	return nil
}
