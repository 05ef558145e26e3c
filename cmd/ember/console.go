package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ember/internal/console"
	"ember/internal/ui"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Boot the kernel and type into it from this terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
			return errors.New("console needs an interactive terminal; use `ember run` instead")
		}
		cfg, err := loadConfig(cmd)
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

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return k.Main(kctx) })
		g.Go(func() error {
			defer stopKernel()
			return ui.Run(gctx, "ember", k, k.Inject)
		})
		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		if t, _ := cmd.Root().PersistentFlags().GetBool("timings"); t {
			fmt.Fprint(cmd.ErrOrStderr(), k.Timings().Summary())
		}
		return nil
	},
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports usable as the console mirror",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ports, err := console.SerialPorts()
		if err != nil {
			return err
		}
		if len(ports) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "no serial ports found")
			return nil
		}
		for _, p := range ports {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}
