//go:build !unix

package keystore

import (
	"log/slog"
	"os"
	"runtime"
)

// secureWriteFile persists the key on platforms without POSIX permission
// bits. The key is still written, but the owner-only guarantee is weaker
// and is logged rather than silently ignored.
func secureWriteFile(path string, data []byte) error {
	slog.Warn("private key written without POSIX permission bits",
		"platform", runtime.GOOS,
		"path", path,
		"note", "owner-only access cannot be enforced on this platform")
	return os.WriteFile(path, data, 0o600)
}
