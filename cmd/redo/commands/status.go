package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/redo/internal/adapters/logger" //nolint:depguard // Shares the logger's styling
)

func (c *CLI) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [tasks...]",
		Short: "Show which tasks would run, without running them",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := c.app.Status(cmd.Context(), args, runOptions(cmd))
			if err != nil {
				return err
			}

			out := logger.NewOutput(cmd.OutOrStdout())
			for _, s := range status {
				if s.Stale {
					_, _ = fmt.Fprintf(out, "• %s (stale)\n", s.Name)
					continue
				}
				_, _ = fmt.Fprintln(out, logger.Success(out, s.Name))
			}
			return nil
		},
	}
}
