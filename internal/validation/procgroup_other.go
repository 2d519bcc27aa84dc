//go:build !unix

package validation

import "os/exec"

// configureProcessGroup leaves the default single-process kill in place.
func configureProcessGroup(_ *exec.Cmd) {}
