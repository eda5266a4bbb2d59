package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openmesh-ai/openmesh-worker/internal/bench"
)

// NewBenchCommand creates the bench command.
func NewBenchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bench",
		Short: "Probe hardware capabilities and persist the record",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := rootOpts.StoragePaths()
			if err != nil {
				return WrapExitError(ExitCommandError, "resolve state dir", err)
			}

			record := bench.SystemProbe{}.Probe()
			if err := record.Save(p); err != nil {
				return WrapExitError(ExitCommandError, "persist bench record", err)
			}

			data, err := record.Encode()
			if err != nil {
				return WrapExitError(ExitFailure, "encode bench record", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
