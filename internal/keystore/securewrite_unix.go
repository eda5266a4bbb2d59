//go:build unix

package keystore

import "os"

// secureWriteFile writes data with owner-only permissions. The chmod
// covers the case where the file already exists with looser bits from
// an earlier run.
func secureWriteFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := f.Chmod(0o600); err != nil {
		f.Close()
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
