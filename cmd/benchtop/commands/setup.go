package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/benchtop-dev/benchtop/cmd/benchtop/handlers"
)

// Setup returns the command that runs a full provisioning pass.
//
// Flags:
//
//	--non-interactive, -n: answer every question from stored preferences
//	--profile: path to a Lua profile overriding preferences
//	--plain: disable colored output
func Setup() *cobra.Command {
	var opts handlers.SetupOptions

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Provision this workstation",
		Long: `Provision this workstation.

The run walks four phases in order:

  Preflight      environment contract, platform detection, host checks
  Configuration  interactive wizard (or stored preferences), profile
  Installation   package installs, artifact downloads, dotfiles seed
  Finalize       cleanup and the completion report

A failing critical step aborts the run; lesser failures are collected
and reported as warnings at the end. Interrupting with Ctrl+C cleans
up staged files and exits with code 130.`,
		Run: func(cmd *cobra.Command, _ []string) {
			// The handler reports its own failures; only the exit
			// code crosses this boundary.
			if code := handlers.Setup(cmd.Context(), opts); code != 0 {
				os.Exit(code)
			}
		},
	}

	cmd.Flags().BoolVarP(&opts.NonInteractive, "non-interactive", "n", false,
		"Answer every question from stored preferences")
	cmd.Flags().StringVar(&opts.ProfilePath, "profile", "",
		"Path to a Lua profile overriding preferences")
	cmd.Flags().BoolVar(&opts.Plain, "plain", false,
		"Disable colored output")

	return cmd
}
