package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/ironsheep/digit-roi/internal/cli"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	// .env is read by config.Load once flags are parsed
	if err := fang.Execute(
		context.Background(),
		cli.RootCmd,
		fang.WithVersion(Version),
		fang.WithCommit(GitCommit),
	); err != nil {
		os.Exit(1)
	}
}
