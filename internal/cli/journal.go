package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openmesh-ai/openmesh-worker/internal/journal"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	Limit int
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent cycle outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum entries to show")
	return cmd
}

func runJournal(opts *JournalOptions, cmd *cobra.Command) error {
	p, err := opts.StoragePaths()
	if err != nil {
		return WrapExitError(ExitCommandError, "resolve state dir", err)
	}

	jnl, err := journal.Open(p.JournalFile())
	if err != nil {
		return WrapExitError(ExitCommandError, "open journal", err)
	}
	defer jnl.Close()

	entries, err := jnl.Recent(cmd.Context(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitFailure, "read journal", err)
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "journal is empty")
		return nil
	}

	for _, e := range entries {
		if e.Status == "success" {
			fmt.Fprintf(out, "%d  %s  success  job=%s  digest=%s\n",
				e.Seq, e.CreatedAt, e.JobID, e.DigestHex)
			continue
		}
		fmt.Fprintf(out, "%d  %s  failed   stage=%s code=%s\n",
			e.Seq, e.CreatedAt, e.Stage, e.Code)
	}
	return nil
}
