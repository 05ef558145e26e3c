package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"ember/internal/keyboard"
	"ember/internal/task"
	"ember/internal/version"
)

// buildInfo is printed by `ember version`. Optional fields are filled only
// when the matching flag asks for them.
type buildInfo struct {
	Tool       string `json:"tool"`
	Version    string `json:"version"`
	Go         string `json:"go"`
	Platform   string `json:"platform"`
	ReadyQueue int    `json:"ready_queue"`
	Scancodes  int    `json:"scancode_queue"`
	GitCommit  string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
}

var (
	versionFormat string
	versionFull   bool
	versionHash   bool
	versionDate   bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionHash, "hash", false, "include git commit hash and message")
	versionCmd.Flags().BoolVar(&versionDate, "date", false, "include build timestamp")
	versionCmd.Flags().BoolVar(&versionFull, "full", false, "show all build metadata")
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show ember build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := collectBuildInfo(versionHash || versionFull, versionDate || versionFull)
		switch strings.ToLower(versionFormat) {
		case "pretty":
			printBuildInfo(cmd.OutOrStdout(), info)
			return nil
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}
		return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
	},
}

func collectBuildInfo(withGit, withDate bool) buildInfo {
	info := buildInfo{
		Tool:       "ember",
		Version:    orDefault(version.Version, "dev"),
		Go:         runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		ReadyQueue: task.DefaultQueueCapacity,
		Scancodes:  keyboard.DefaultQueueCapacity,
	}
	if withGit {
		info.GitCommit = orDefault(version.GitCommit, "unknown")
		info.GitMessage = orDefault(version.GitMessage, "unknown")
	}
	if withDate {
		info.BuildDate = orDefault(version.BuildDate, "unknown")
	}
	return info
}

func printBuildInfo(out io.Writer, info buildInfo) {
	fmt.Fprintf(out, "ember %s (%s, %s)\n", version.Colored(info.Version), info.Go, info.Platform)
	fmt.Fprintf(out, "queues:  ready %d, scancodes %d\n", info.ReadyQueue, info.Scancodes)
	if info.GitCommit != "" {
		fmt.Fprintf(out, "commit:  %s\n", info.GitCommit)
		fmt.Fprintf(out, "message: %s\n", info.GitMessage)
	}
	if info.BuildDate != "" {
		fmt.Fprintf(out, "built:   %s\n", info.BuildDate)
	}
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
