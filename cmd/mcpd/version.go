package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newVersionCmd reports the build-time-injected CLI version (SPEC_FULL.md
// §3, grounded in muster's and vmcp's newVersionCmd). mcpd has no
// always-on network listener to query for a separately running server
// version, so unlike muster's version command this only ever reports the
// binary's own version.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the mcpd version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mcpd version %s\n", GetVersion())
		},
	}
}
