// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to handler functions in the handlers
// package; this package only parses arguments and wires flags.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the benchtop CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benchtop",
		Short: "Provision a developer workstation",
	}

	cmd.AddCommand(Setup())
	cmd.AddCommand(Version())

	return cmd
}
