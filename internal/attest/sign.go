package attest

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
)

// SignatureSize is the length in bytes of an Ed25519 signature.
const SignatureSize = ed25519.SignatureSize

// SignatureError reports malformed signature or key material. A signature
// that is well-formed but does not verify is NOT an error; Verify returns
// false for it.
type SignatureError struct {
	Reason string
}

func (e *SignatureError) Error() string {
	return "signature: " + e.Reason
}

// Sign signs message with the private key and returns the 64-byte
// signature.
func Sign(priv ed25519.PrivateKey, message []byte) []byte {
	return ed25519.Sign(priv, message)
}

// Verify reports whether sig is a valid signature of message under pub.
// Returns a *SignatureError only when sig or pub has the wrong length;
// an invalid signature is a normal false result.
func Verify(pub ed25519.PublicKey, message, sig []byte) (bool, error) {
	if len(pub) != ed25519.PublicKeySize {
		return false, &SignatureError{Reason: fmt.Sprintf("public key is %d bytes, want %d", len(pub), ed25519.PublicKeySize)}
	}
	if len(sig) != SignatureSize {
		return false, &SignatureError{Reason: fmt.Sprintf("signature is %d bytes, want %d", len(sig), SignatureSize)}
	}
	return ed25519.Verify(pub, message, sig), nil
}

// EncodeSignature encodes a signature with standard (non-URL) base64.
func EncodeSignature(sig []byte) string {
	return base64.StdEncoding.EncodeToString(sig)
}

// DecodeSignature decodes a standard-base64 signature and enforces the
// 64-byte length. Wrong length is a hard error, never padded or
// truncated.
func DecodeSignature(s string) ([]byte, error) {
	sig, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, &SignatureError{Reason: fmt.Sprintf("invalid base64: %v", err)}
	}
	if len(sig) != SignatureSize {
		return nil, &SignatureError{Reason: fmt.Sprintf("signature is %d bytes after decoding, want %d", len(sig), SignatureSize)}
	}
	return sig, nil
}
