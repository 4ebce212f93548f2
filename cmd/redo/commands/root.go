// Package commands implements the CLI commands for the redo build tool.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/redo/internal/app"
	"go.trai.ch/redo/internal/build"
)

// CLI represents the command line interface for redo.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "redo",
		Short:         "An incremental build tool driven by file contents",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.StringP("dir", "C", ".", "Directory to search for redo.yaml from")
	flags.IntP("jobs", "j", 0, "Maximum number of tasks running at once (default: number of CPUs)")
	flags.BoolP("force", "f", false, "Treat every task as stale")
	flags.Bool("clean-on-failure", false, "Remove the targets of a task whose action fails")
	flags.String("digest", "", "Content hash for dependency records: xxh64, blake3 or sha256")
	flags.Bool("json-logs", false, "Write logs as JSON")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		a.SetJSONLogs(jsonLogs)
	}

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newStatusCmd())
	rootCmd.AddCommand(c.newResetCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetOutput redirects command output and usage text. Used for testing.
func (c *CLI) SetOutput(w io.Writer) {
	c.rootCmd.SetOut(w)
	c.rootCmd.SetErr(w)
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

func runOptions(cmd *cobra.Command) app.RunOptions {
	flags := cmd.Flags()
	dir, _ := flags.GetString("dir")
	jobs, _ := flags.GetInt("jobs")
	force, _ := flags.GetBool("force")
	clean, _ := flags.GetBool("clean-on-failure")
	digest, _ := flags.GetString("digest")
	return app.RunOptions{
		Dir:            dir,
		Force:          force,
		Jobs:           jobs,
		CleanOnFailure: clean,
		Digest:         digest,
	}
}
