package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mrz1836/slicer/internal/constants"
	"github.com/mrz1836/slicer/internal/errors"
)

// HomeEnvVar overrides the slicer home directory.
const HomeEnvVar = "SLICER_HOME"

// HomeDir returns the directory where slicer keeps its own data, ~/.slicer
// unless SLICER_HOME is set.
//
// Returns an error if the home directory cannot be determined.
func HomeDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(HomeEnvVar)); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.SlicerHome), nil
}

// LogDir returns the directory holding the rotating CLI log file.
func LogDir() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, constants.LogsDir), nil
}

// RunsRoot returns the run artifact root for a working directory.
func RunsRoot(workingDir string) string {
	return filepath.Join(workingDir, filepath.FromSlash(constants.RunsDir))
}

// RunLockPath returns the run lock file for a working directory.
func RunLockPath(workingDir string) string {
	return filepath.Join(workingDir, filepath.FromSlash(constants.RunLockFile))
}
