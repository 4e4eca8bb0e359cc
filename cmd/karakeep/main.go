package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/ahgraber/karakeep-client/internal/cli"
)

// Overridden via -ldflags at release time; resolveBuildInfo fills the gaps
// from the embedded module info for plain `go install` builds.
var (
	version = "dev"
	commit  = "none"
)

func resolveBuildInfo() (string, string) {
	v, c := version, commit
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v, c
	}
	if v == "dev" && info.Main.Version != "" {
		v = info.Main.Version
	}
	if c == "none" {
		c = "unknown"
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				c = setting.Value
				break
			}
		}
	}
	return v, c
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli.Version, cli.Commit = resolveBuildInfo()

	if err := cli.Run(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "\nInterrupted")
			os.Exit(130) // 128 + SIGINT
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
