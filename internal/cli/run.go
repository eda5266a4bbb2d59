package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openmesh-ai/openmesh-worker/internal/agent"
	"github.com/openmesh-ai/openmesh-worker/internal/identity"
	"github.com/openmesh-ai/openmesh-worker/internal/journal"
	"github.com/openmesh-ai/openmesh-worker/internal/keystore"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the worker loop",
		Long: `Start the worker loop.

Loads the identity and signing key, then repeats the
heartbeat-fetch-execute-attest-submit cycle until interrupted, backing
off exponentially on failure. A missing identity or key is fatal; the
worker never runs unsigned.

Example:
  openmesh-worker run --verbose`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoop(rootOpts, cmd)
		},
	}
}

func runLoop(rootOpts *RootOptions, cmd *cobra.Command) error {
	p, err := rootOpts.StoragePaths()
	if err != nil {
		return WrapExitError(ExitCommandError, "resolve state dir", err)
	}

	// Startup errors are fatal: the loop must not begin without a valid
	// identity and keypair.
	id, err := identity.Load(p)
	if err != nil {
		return WrapExitError(ExitCommandError, "load identity (run init first)", err)
	}

	kp, err := keystore.New(p).Load()
	if err != nil {
		if keystore.IsNotFound(err) {
			return WrapExitError(ExitCommandError, "no signing key (run keygen first)", err)
		}
		return WrapExitError(ExitCommandError, "load signing key", err)
	}

	slog.Info("opening journal", "path", p.JournalFile())
	jnl, err := journal.Open(p.JournalFile())
	if err != nil {
		return WrapExitError(ExitCommandError, "open journal", err)
	}
	defer func() {
		if closeErr := jnl.Close(); closeErr != nil {
			slog.Error("error closing journal", "error", closeErr)
		}
	}()

	a := agent.New(id, kp.Private, agent.WithRecorder(jnl))

	// Graceful shutdown on SIGINT/SIGTERM; process termination is the
	// loop's only exit path.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	slog.Info("worker starting", "name", id.Name, "region", id.Region, "coordinator", id.CoordinatorURL)
	fmt.Fprintln(cmd.OutOrStdout(), "Worker started. Press Ctrl-C to stop.")

	if err := a.Run(ctx); err != nil &&
		!errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "worker loop error", err)
	}

	slog.Info("worker stopped gracefully")
	return nil
}
