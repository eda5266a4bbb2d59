package attest

import (
	"crypto/ed25519"
	"fmt"

	"github.com/openmesh-ai/openmesh-worker/internal/canonical"
)

// Attestation is the signed form of one result payload, ready for
// submission to a coordinator.
type Attestation struct {
	// Canonical is the deterministic encoding of the result.
	Canonical []byte

	// DigestHex is the lowercase SHA-256 hex of Canonical.
	DigestHex string

	// Signature is the standard-base64 Ed25519 signature over the BYTES
	// OF DigestHex (the hex string itself, not the raw digest and not
	// Canonical). Existing verifiers check exactly this message, so the
	// indirection must not change.
	Signature string
}

// Result canonicalizes, digests, and signs a result payload.
func Result(priv ed25519.PrivateKey, result map[string]any) (Attestation, error) {
	enc, err := canonical.Marshal(result)
	if err != nil {
		return Attestation{}, fmt.Errorf("canonicalize result: %w", err)
	}

	digest := DigestHex(enc)
	sig := Sign(priv, []byte(digest))

	return Attestation{
		Canonical: enc,
		DigestHex: digest,
		Signature: EncodeSignature(sig),
	}, nil
}
