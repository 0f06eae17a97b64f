package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the sitegrid CLI with the process arguments. Logs go to
// stderr at info level, or debug with --verbose.
func Execute(ctx context.Context) error {
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// newRootCommand builds the command tree with a --verbose flag that lowers
// the shared logger to debug before any command runs.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var verbose bool

	c := New(stderr, LogInfo)
	root := c.RootCommand()
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	setup := root.PersistentPreRun
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			c.SetLogLevel(LogDebug)
		}
		if setup != nil {
			setup(cmd, args)
		}
	}
	return root
}
