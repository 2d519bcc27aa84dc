// Package runlog persists run artifacts under a timestamped run directory.
//
// Every prompt response, parsed payload, check log and summary is one file.
// Files are written atomically, so a crash never leaves a half-written
// artifact behind; the previous version of a rewritten summary survives instead.
package runlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrz1836/slicer/internal/clock"
	"github.com/mrz1836/slicer/internal/constants"
	"github.com/mrz1836/slicer/internal/errors"
)

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// maxNameCollisions bounds the suffix search when two runs start in the same second.
const maxNameCollisions = 100

// Logger writes artifacts below one directory.
type Logger struct {
	dir string
}

// New creates a fresh run directory under root, named from the clock.
// A run started in the same second as an earlier one gets a numeric suffix.
func New(root string, clk clock.Clock) (*Logger, error) {
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("%w: create runs root %s: %w", errors.ErrArtifactWrite, root, err)
	}

	base := RunDirName(clk)
	for i := 1; i <= maxNameCollisions; i++ {
		name := base
		if i > 1 {
			name = fmt.Sprintf("%s-%d", base, i)
		}
		dir := filepath.Join(root, name)
		err := os.Mkdir(dir, dirPerm)
		if err == nil {
			return &Logger{dir: dir}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("%w: create run directory %s: %w", errors.ErrArtifactWrite, dir, err)
		}
	}
	return nil, fmt.Errorf("%w: too many runs named %s", errors.ErrArtifactWrite, base)
}

// Open returns a Logger over an existing directory without creating anything.
func Open(dir string) *Logger {
	return &Logger{dir: dir}
}

// RunDirName formats the run directory name for the clock's current time.
func RunDirName(clk clock.Clock) string {
	return clk.Now().Format(constants.RunDirTimeLayout)
}

// Dir returns the absolute directory this Logger writes into.
func (l *Logger) Dir() string {
	return l.dir
}

// Sub returns a Logger rooted at a subdirectory, creating it.
func (l *Logger) Sub(rel string) (*Logger, error) {
	path, err := l.resolve(rel)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(path, dirPerm); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errors.ErrArtifactWrite, rel, err)
	}
	return &Logger{dir: path}, nil
}

// WriteText writes text as one artifact file.
func (l *Logger) WriteText(rel, text string) error {
	return l.write(rel, []byte(text))
}

// WriteJSON writes v as indented JSON, HTML characters left unescaped.
func (l *Logger) WriteJSON(rel string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("%w: encode %s: %w", errors.ErrArtifactWrite, rel, err)
	}
	return l.write(rel, buf.Bytes())
}

func (l *Logger) write(rel string, data []byte) error {
	path, err := l.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("%w: %s: %w", errors.ErrArtifactWrite, rel, err)
	}
	if err := atomicWrite(path, data); err != nil {
		return fmt.Errorf("%w: %s: %w", errors.ErrArtifactWrite, rel, err)
	}
	return nil
}

// resolve joins a slash-separated artifact name onto the directory,
// refusing names that would land outside it.
func (l *Logger) resolve(rel string) (string, error) {
	if strings.TrimSpace(rel) == "" {
		return "", fmt.Errorf("artifact name %w", errors.ErrEmptyValue)
	}
	if strings.Contains(rel, `\`) || !filepath.IsLocal(filepath.FromSlash(rel)) {
		return "", fmt.Errorf("artifact %q: %w", rel, errors.ErrPathTraversal)
	}
	return filepath.Join(l.dir, filepath.FromSlash(rel)), nil
}

// atomicWrite writes data to a temp file, syncs it, and renames it into place.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is resolved inside the run directory
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
