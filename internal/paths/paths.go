// Package paths centralizes where the worker keeps its on-disk state.
// Every component takes a StoragePaths at construction instead of
// resolving locations itself, so tests can point the whole stack at a
// temporary directory.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// StoragePaths locates the worker's persisted state under one base
// directory.
type StoragePaths struct {
	BaseDir string
}

// Default resolves the per-user configuration directory,
// e.g. ~/.config/openmesh-worker on Linux.
func Default() (StoragePaths, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return StoragePaths{}, fmt.Errorf("resolve user config dir: %w", err)
	}
	return StoragePaths{BaseDir: filepath.Join(dir, "openmesh-worker")}, nil
}

// IdentityFile is the worker identity record (contains the API key).
func (p StoragePaths) IdentityFile() string {
	return filepath.Join(p.BaseDir, "identity.yaml")
}

// PrivateKeyFile is the base64-encoded Ed25519 seed, single line.
func (p StoragePaths) PrivateKeyFile() string {
	return filepath.Join(p.BaseDir, "worker.key")
}

// BenchFile is the canonical-JSON capability record.
func (p StoragePaths) BenchFile() string {
	return filepath.Join(p.BaseDir, "bench.json")
}

// JournalFile is the SQLite submission journal.
func (p StoragePaths) JournalFile() string {
	return filepath.Join(p.BaseDir, "journal.db")
}

// EnsureBaseDir creates the base directory, owner-only, if missing.
func (p StoragePaths) EnsureBaseDir() error {
	if err := os.MkdirAll(p.BaseDir, 0o700); err != nil {
		return fmt.Errorf("create state dir %s: %w", p.BaseDir, err)
	}
	return nil
}
