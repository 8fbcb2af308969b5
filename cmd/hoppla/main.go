package main

import (
	"github.com/tacogips/hoppla/internal/cli"
)

// Version information (set via ldflags during build)
var (
	version   = ""
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	// Set version info from build-time variables
	if version != "" {
		cli.Version = version
	}
	cli.GitCommit = gitCommit
	cli.BuildDate = buildDate

	// Execute the root command
	cli.Execute()
}
