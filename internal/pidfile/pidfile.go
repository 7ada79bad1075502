// Package pidfile records the probe's process id for external tooling.
package pidfile

import (
	"fmt"
	"strconv"

	"github.com/prometheus/procfs"

	"github.com/shini4i/netrate/internal/state"
)

// Current returns the process id as seen through /proc/self.
func Current() (int, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return 0, fmt.Errorf("open procfs: %w", err)
	}
	self, err := fs.Self()
	if err != nil {
		return 0, fmt.Errorf("resolve /proc/self: %w", err)
	}
	return self.PID, nil
}

// Write stores the decimal process id in path, without a trailing newline.
func Write(path string) error {
	pid, err := Current()
	if err != nil {
		return err
	}
	return state.StoreText(path, strconv.Itoa(pid))
}
