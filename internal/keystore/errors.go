package keystore

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes key store failures.
type ErrorKind string

const (
	// KindNotFound means no key has been generated at this path yet.
	KindNotFound ErrorKind = "NOT_FOUND"

	// KindMalformed means the stored material did not decode to a seed
	// of the expected length.
	KindMalformed ErrorKind = "MALFORMED"

	// KindIoFailure means the key location could not be read or written.
	KindIoFailure ErrorKind = "IO_FAILURE"
)

// KeyStoreError is returned by Persist and Load. Key store failures are
// startup-fatal: the worker loop cannot begin without a valid keypair.
type KeyStoreError struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *KeyStoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("keystore %s (%s): %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("keystore %s (%s)", e.Kind, e.Path)
}

func (e *KeyStoreError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a key-not-found error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var ke *KeyStoreError
	return errors.As(err, &ke) && ke.Kind == KindNotFound
}

// IsMalformed reports whether err is a malformed-key error.
func IsMalformed(err error) bool {
	var ke *KeyStoreError
	return errors.As(err, &ke) && ke.Kind == KindMalformed
}
