// Package identity persists the worker's durable attributes: who it is,
// which coordinator it reports to, and the credential it presents.
package identity

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openmesh-ai/openmesh-worker/internal/paths"
)

// Identity is the worker's durable record. It is created by `init`,
// mutated only when keys are (re)generated, and never deleted by the
// worker itself.
//
// APIKey is a secret: it authenticates the worker to the coordinator and
// must never be canonicalized into signed payloads or logged.
type Identity struct {
	CoordinatorURL string `yaml:"coordinator_url"`
	APIKey         string `yaml:"api_key"`
	Name           string `yaml:"name"`
	Region         string `yaml:"region"`

	// PublicKey is the standard-base64 Ed25519 public key, absent until
	// keygen has run.
	PublicKey string `yaml:"public_key,omitempty"`
}

// ErrNotFound is returned by Load when no identity has been initialized.
var ErrNotFound = errors.New("identity: not initialized")

// Load reads the identity record.
func Load(p paths.StoragePaths) (*Identity, error) {
	data, err := os.ReadFile(p.IdentityFile())
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read identity: %w", err)
	}

	var id Identity
	if err := yaml.Unmarshal(data, &id); err != nil {
		return nil, fmt.Errorf("parse identity %s: %w", p.IdentityFile(), err)
	}
	return &id, nil
}

// Save writes the identity record, owner-only (it carries the API key).
func (id *Identity) Save(p paths.StoragePaths) error {
	if err := p.EnsureBaseDir(); err != nil {
		return err
	}

	data, err := yaml.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := os.WriteFile(p.IdentityFile(), data, 0o600); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}
