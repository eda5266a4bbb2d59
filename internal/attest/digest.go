// Package attest produces tamper-evident result attestations: canonical
// encoding, SHA-256 digesting, and Ed25519 signing of result payloads.
package attest

import (
	"crypto/sha256"
	"encoding/hex"
)

// DigestSize is the length in bytes of a result digest.
const DigestSize = sha256.Size

// Digest returns the SHA-256 fingerprint of data.
func Digest(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// DigestHex returns the SHA-256 fingerprint of data as a lowercase
// 64-character hex string. This string, not the raw digest, is what the
// execution cycle signs.
func DigestHex(data []byte) string {
	return hex.EncodeToString(Digest(data))
}
