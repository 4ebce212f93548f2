package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset tasks...",
		Short: "Forget recorded dependency state so tasks run again",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Reset(args, runOptions(cmd))
		},
	}
}
