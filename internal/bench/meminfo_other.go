//go:build !linux

package bench

// totalRAM has no portable source outside Linux; the record carries
// "unknown" rather than a guessed value.
func totalRAM() string {
	return "unknown"
}
