package main

import (
	"os"

	"github.com/azargarov/packsched/cmd/packsim/commands"
)

// Version information, set during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	// Errors are already reported by the command in colour.
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
