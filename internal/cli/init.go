package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openmesh-ai/openmesh-worker/internal/identity"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	Name           string
	Region         string
	CoordinatorURL string
	APIKey         string
	Force          bool
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the worker identity record",
		Long: `Create the worker identity record.

The identity names the worker, its deployment region, the coordinator it
reports to, and the API key it presents. Run keygen afterwards to attach
a signing key.

Example:
  openmesh-worker init --name edge-01 --region eu-west \
    --coordinator-url https://pool.example.com --api-key omk_...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "worker name (required)")
	cmd.Flags().StringVar(&opts.Region, "region", "", "deployment region")
	cmd.Flags().StringVar(&opts.CoordinatorURL, "coordinator-url", "", "coordinator endpoint (required)")
	cmd.Flags().StringVar(&opts.APIKey, "api-key", "", "coordinator access credential (required)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing identity")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("coordinator-url")
	_ = cmd.MarkFlagRequired("api-key")

	return cmd
}

func runInit(opts *InitOptions, cmd *cobra.Command) error {
	p, err := opts.StoragePaths()
	if err != nil {
		return WrapExitError(ExitCommandError, "resolve state dir", err)
	}

	if _, err := identity.Load(p); err == nil && !opts.Force {
		return NewExitError(ExitCommandError, "identity already initialized (use --force to overwrite)")
	} else if err != nil && !errors.Is(err, identity.ErrNotFound) {
		return WrapExitError(ExitCommandError, "read existing identity", err)
	}

	id := &identity.Identity{
		CoordinatorURL: opts.CoordinatorURL,
		APIKey:         opts.APIKey,
		Name:           opts.Name,
		Region:         opts.Region,
	}
	if err := id.Save(p); err != nil {
		return WrapExitError(ExitCommandError, "write identity", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "identity written to %s\n", p.IdentityFile())
	return nil
}
