package constants

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpecDefaultsWithinBounds(t *testing.T) {
	tests := []struct {
		name     string
		value    int
		min, max int
	}{
		{"max slices", DefaultMaxSlices, MinSlices, MaxSlices},
		{"max attempts", DefaultMaxAttemptsPerSlice, MinAttemptsPerSlice, MaxAttemptsPerSlice},
		{"max files", DefaultMaxFilesPerSlice, MinFilesPerSlice, MaxFilesPerSlice},
		{"command timeout", DefaultCommandTimeoutSeconds, MinCommandTimeoutSeconds, MaxCommandTimeoutSeconds},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.GreaterOrEqual(t, tc.value, tc.min)
			assert.LessOrEqual(t, tc.value, tc.max)
		})
	}
}

func TestBackendTimeoutsDistinctFromChecks(t *testing.T) {
	assert.Equal(t, 180*time.Second, HTTPBackendTimeout)
	assert.Equal(t, 900*time.Second, CodexBackendTimeout)
	assert.Less(t, GitQueryTimeout, HTTPBackendTimeout)
}

func TestContentCeilings(t *testing.T) {
	assert.Equal(t, 25_000, MaxFileChars)
	assert.Equal(t, 80_000, MaxDiffChars)
	assert.Greater(t, MaxDiffChars, MaxFileChars, "a diff holds at least one full file")
	assert.Equal(t, 124, TimeoutExitCode)
}

func TestRunsDirUnderHome(t *testing.T) {
	assert.Equal(t, SlicerHome+"/runs", RunsDir)
}
