// Package cli wires the worker's subcommands: identity initialization,
// key generation, capability probing, and the long-running agent loop.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/openmesh-ai/openmesh-worker/internal/paths"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	StateDir string // override the per-user state directory
}

// StoragePaths resolves the state directory, honoring --state-dir.
func (o *RootOptions) StoragePaths() (paths.StoragePaths, error) {
	if o.StateDir != "" {
		return paths.StoragePaths{BaseDir: o.StateDir}, nil
	}
	return paths.Default()
}

// NewRootCommand creates the root command for the worker CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "openmesh-worker",
		Short:         "OpenMesh-AI worker CLI",
		Long:          "Worker node agent for the OpenMesh-AI compute network.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
			slog.SetDefault(slog.New(handler))
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "openmesh-worker ready")
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.StateDir, "state-dir", "", "state directory (default: per-user config dir)")

	cmd.AddCommand(NewHealthCommand(opts))
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewKeygenCommand(opts))
	cmd.AddCommand(NewBenchCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewJournalCommand(opts))

	return cmd
}
