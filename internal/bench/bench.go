// Package bench captures the worker's hardware capabilities as a
// canonical-JSON record. The worker does not interpret the values; it
// canonicalizes and persists whatever the probe reports.
package bench

import (
	"fmt"
	"os"
	"runtime"

	"github.com/openmesh-ai/openmesh-worker/internal/canonical"
	"github.com/openmesh-ai/openmesh-worker/internal/paths"
)

// Record is one capability snapshot.
type Record struct {
	CPU string // architecture id, e.g. "amd64"
	RAM string // raw platform-reported value, or "unknown"
	OS  string
	GPU string // model name; empty when no GPU was detected
}

// Probe supplies raw OS/hardware facts. Implemented by SystemProbe
// (production) and fixed structs in tests.
type Probe interface {
	Probe() Record
}

// SystemProbe reads capabilities from the running platform.
type SystemProbe struct{}

// Probe reports the compile-time architecture and OS, the platform's raw
// total-memory figure where readable, and no GPU (detection is left to
// an external prober).
func (SystemProbe) Probe() Record {
	return Record{
		CPU: runtime.GOARCH,
		RAM: totalRAM(),
		OS:  runtime.GOOS,
		GPU: "",
	}
}

// ToMap returns the record in the shape that gets canonicalized. The
// gpu field is present only when a GPU was detected.
func (r Record) ToMap() map[string]any {
	m := map[string]any{
		"cpu": r.CPU,
		"ram": r.RAM,
		"os":  r.OS,
	}
	if r.GPU != "" {
		m["gpu"] = r.GPU
	}
	return m
}

// Encode returns the canonical-JSON form of the record.
func (r Record) Encode() ([]byte, error) {
	return canonical.Marshal(r.ToMap())
}

// Save writes the canonical record to the bench file.
func (r Record) Save(p paths.StoragePaths) error {
	data, err := r.Encode()
	if err != nil {
		return fmt.Errorf("encode bench record: %w", err)
	}
	if err := p.EnsureBaseDir(); err != nil {
		return err
	}
	if err := os.WriteFile(p.BenchFile(), data, 0o644); err != nil {
		return fmt.Errorf("write bench record: %w", err)
	}
	return nil
}
