//go:build linux
// +build linux

package symbol

import (
	"github.com/coral-mesh/fieldtrace/internal/sys/proc"
)

// loadModules reads the loaded modules of the calling process.
func loadModules() ([]*proc.Module, error) {
	mappings, err := proc.ReadMaps(proc.Self)
	if err != nil {
		return nil, err
	}
	return proc.GroupModules(mappings), nil
}

// executablePath returns the file the calling process was started from.
func executablePath() (string, error) {
	return proc.GetBinaryPath(proc.Self)
}
