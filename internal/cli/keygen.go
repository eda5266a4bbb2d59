package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openmesh-ai/openmesh-worker/internal/identity"
	"github.com/openmesh-ai/openmesh-worker/internal/keystore"
)

// NewKeygenCommand creates the keygen command.
func NewKeygenCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate and persist the worker signing keypair",
		Long: `Generate a new Ed25519 signing keypair.

The private key is written to the state directory with owner-only
access and REPLACES any existing key. The public key is embedded into
the identity record. The private key is never printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygen(rootOpts, cmd)
		},
	}
}

func runKeygen(rootOpts *RootOptions, cmd *cobra.Command) error {
	p, err := rootOpts.StoragePaths()
	if err != nil {
		return WrapExitError(ExitCommandError, "resolve state dir", err)
	}

	id, err := identity.Load(p)
	if err != nil {
		return WrapExitError(ExitCommandError, "load identity (run init first)", err)
	}

	kp, err := keystore.Generate()
	if err != nil {
		return WrapExitError(ExitFailure, "generate keypair", err)
	}
	if err := keystore.New(p).Persist(kp); err != nil {
		return WrapExitError(ExitCommandError, "persist private key", err)
	}

	id.PublicKey = kp.PublicBase64()
	if err := id.Save(p); err != nil {
		return WrapExitError(ExitCommandError, "update identity with public key", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "public_key: %s\n", id.PublicKey)
	return nil
}
