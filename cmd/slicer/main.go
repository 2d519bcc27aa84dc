// Package main provides the entry point for the slicer CLI.
package main

import (
	"context"
	"os"

	"github.com/mrz1836/slicer/internal/cli"
)

// Set at build time via ldflags.
//
//nolint:gochecknoglobals // Build-time version injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := cli.Execute(context.Background(), cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	os.Exit(cli.ExitCodeForError(err))
}
