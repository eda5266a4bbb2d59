// Package keystore manages the lifecycle of the worker's Ed25519 signing
// keypair: generation from a CSPRNG, owner-only persistence of the seed,
// and reload on startup.
//
// The key file is a shared resource across worker processes pointed at
// the same StoragePaths: Persist takes no lock, so concurrent writers
// race and the last write wins. Running several workers against one key
// path requires external coordination.
package keystore

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openmesh-ai/openmesh-worker/internal/paths"
)

// SeedSize is the length in bytes of the persisted private key seed.
const SeedSize = ed25519.SeedSize

// Keypair holds the worker's signing key material. Seed is the 32-byte
// private scalar that gets persisted; Private and Public are derived
// from it. The private half must never appear in logs, canonical
// payloads, or anything transmitted.
type Keypair struct {
	Seed    []byte
	Private ed25519.PrivateKey
	Public  ed25519.PublicKey
}

// PublicBase64 returns the 32-byte public key in standard base64, the
// form embedded into the identity record.
func (k *Keypair) PublicBase64() string {
	return base64.StdEncoding.EncodeToString(k.Public)
}

// Generate draws a new keypair from crypto/rand. It does not persist;
// callers decide whether the key becomes durable.
func Generate() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return &Keypair{Seed: priv.Seed(), Private: priv, Public: pub}, nil
}

// Store persists and loads keypairs at a fixed location.
type Store struct {
	paths paths.StoragePaths
}

// New creates a key store rooted at the given paths.
func New(p paths.StoragePaths) *Store {
	return &Store{paths: p}
}

// Persist writes the keypair's seed, standard-base64 on a single line,
// to the private key file with access restricted to the owning user.
// Any prior key at that location is overwritten.
func (s *Store) Persist(kp *Keypair) error {
	if err := s.paths.EnsureBaseDir(); err != nil {
		return &KeyStoreError{Kind: KindIoFailure, Path: s.paths.PrivateKeyFile(), Err: err}
	}

	line := base64.StdEncoding.EncodeToString(kp.Seed) + "\n"
	if err := secureWriteFile(s.paths.PrivateKeyFile(), []byte(line)); err != nil {
		return &KeyStoreError{Kind: KindIoFailure, Path: s.paths.PrivateKeyFile(), Err: err}
	}
	return nil
}

// Load reads the persisted seed and reconstructs the keypair. The
// decoded seed must be exactly 32 bytes; anything else is malformed,
// never silently truncated or padded.
func (s *Store) Load() (*Keypair, error) {
	path := s.paths.PrivateKeyFile()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &KeyStoreError{Kind: KindNotFound, Path: path, Err: err}
	}
	if err != nil {
		return nil, &KeyStoreError{Kind: KindIoFailure, Path: path, Err: err}
	}

	seed, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, &KeyStoreError{Kind: KindMalformed, Path: path, Err: err}
	}
	if len(seed) != SeedSize {
		return nil, &KeyStoreError{
			Kind: KindMalformed,
			Path: path,
			Err:  fmt.Errorf("seed is %d bytes after decoding, want %d", len(seed), SeedSize),
		}
	}

	priv := ed25519.NewKeyFromSeed(seed)
	return &Keypair{
		Seed:    seed,
		Private: priv,
		Public:  priv.Public().(ed25519.PublicKey),
	}, nil
}
