//go:build linux

package bench

import (
	"bufio"
	"os"
	"strings"
)

// totalRAM reports the kernel's raw MemTotal figure, e.g. "16384256 kB".
// The value is passed through untouched; normalization is the
// coordinator's problem.
func totalRAM() string {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return "unknown"
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if rest, ok := strings.CutPrefix(line, "MemTotal:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return "unknown"
}
