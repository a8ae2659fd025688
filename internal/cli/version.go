package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/netfoundation/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appName, info.String())
			fmt.Fprintf(cmd.OutOrStdout(), "User-Agent: %s\n", version.UserAgent("netfoundation"))
		},
	}
}
