// Package main is the entry point for the dcrvault CLI.
package main

import (
	"os"

	"github.com/mrz1836/dcrvault/internal/cli"
)

// Set by the linker at release time.
//
//nolint:gochecknoglobals // ldflags targets
var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	cli.SetBuildInfo(cli.BuildInfo{Version: version, Commit: commit, Date: date})
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
