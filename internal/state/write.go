package state

import (
	"fmt"
	"os"
	"path/filepath"
)

// filePerm matches what a plain create would give under the usual 022 umask,
// so status bar readers running as other users can still open the files.
const filePerm os.FileMode = 0o644

// WriteError reports a failed state file write.
type WriteError struct {
	Path string
	// Op is the step that failed: "create", "write", "close", "chmod" or "rename".
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// replaceFile writes data next to path and renames it into place, so readers
// polling path see either the old or the new content and never a truncated file.
func replaceFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return &WriteError{Path: path, Op: "create", Err: err}
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &WriteError{Path: path, Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Path: path, Op: "close", Err: err}
	}
	if err := os.Chmod(tmpPath, filePerm); err != nil {
		return &WriteError{Path: path, Op: "chmod", Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &WriteError{Path: path, Op: "rename", Err: err}
	}

	committed = true
	return nil
}
