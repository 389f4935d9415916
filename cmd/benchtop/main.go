// Package main is the entry point for the benchtop CLI.
//
// benchtop provisions a developer workstation: it detects the host
// platform, collects the operator's preferences, installs the selected
// tool groups through the system package manager, and seeds the
// dotfiles repository and git identity.
//
// For detailed usage information, run:
//
//	benchtop --help
package main

import (
	"fmt"
	"os"

	"github.com/benchtop-dev/benchtop/cmd/benchtop/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
