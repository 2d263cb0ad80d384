//go:build !linux
// +build !linux

package symbol

import (
	"fmt"
	"os"
	"runtime"

	"github.com/coral-mesh/fieldtrace/internal/sys/proc"
)

// loadModules returns an error on platforms without /proc. Go functions still
// resolve through the runtime table and are attributed to the executable.
func loadModules() ([]*proc.Module, error) {
	return nil, fmt.Errorf("module map is not supported on %s", runtime.GOOS)
}

func executablePath() (string, error) {
	return os.Executable()
}
