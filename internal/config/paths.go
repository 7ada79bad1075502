package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the resolved output files.
type Paths struct {
	Dir          string
	SendTotal    string
	RecvTotal    string
	SendInterval string
	RecvInterval string
	// PID is empty when no PID file is written.
	PID string
}

// ResolvePaths joins the output directory with the configured filenames.
// The directory is the alternate prefix when enabled, otherwise $XDG_RUNTIME_DIR.
func (c *Config) ResolvePaths() (*Paths, error) {
	return c.resolvePaths(os.Getenv)
}

func (c *Config) resolvePaths(getenv func(string) string) (*Paths, error) {
	dir := c.Prefix
	if !c.EnableAltPrefix {
		dir = getenv(RuntimeDirEnv)
		if dir == "" {
			return nil, ErrRuntimeDirUnset
		}
	}

	p := &Paths{
		Dir:          dir,
		SendTotal:    filepath.Join(dir, c.SendTotalFilename),
		RecvTotal:    filepath.Join(dir, c.RecvTotalFilename),
		SendInterval: filepath.Join(dir, c.SendIntervalFilename),
		RecvInterval: filepath.Join(dir, c.RecvIntervalFilename),
	}
	if c.PIDFilename != "" {
		p.PID = filepath.Join(dir, c.PIDFilename)
	}
	return p, nil
}

// EnsureDir creates the output directory if it does not exist.
func (p *Paths) EnsureDir() error {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}
