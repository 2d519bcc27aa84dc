// Package flock guards a working tree against concurrent slicer runs.
//
// A run holds an exclusive, non-blocking lock on a file under the
// working directory's .slicer/ folder for as long as it may write there.
// A second run against the same tree fails immediately with ErrRunLocked
// rather than waiting. The kernel drops the lock if the process dies, so a
// stale lock file is harmless.
package flock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrz1836/slicer/internal/errors"
)

// File is a held lock. Release it exactly once.
type File struct {
	path string
	file *os.File
}

// Acquire opens (creating if needed) the lock file at path and takes an
// exclusive lock on it.
func Acquire(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600) //#nosec G304 -- path is derived from the working directory
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := Exclusive(f.Fd()); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", errors.ErrRunLocked, path)
	}
	return &File{path: path, file: f}, nil
}

// Path returns the lock file path.
func (l *File) Path() string {
	return l.path
}

// Release unlocks and closes the lock file. The file itself is left in place.
func (l *File) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = Unlock(l.file.Fd())
	err := l.file.Close()
	l.file = nil
	return err
}
