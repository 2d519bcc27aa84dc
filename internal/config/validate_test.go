package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	slicererrors "github.com/mrz1836/slicer/internal/errors"
)

func validSpec() *Spec {
	spec := DefaultSpec()
	spec.Goal = "g"
	spec.WorkingDirectory = "/tmp/repo"
	return spec
}

func TestValidate_NilSpec(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Validate(nil), slicererrors.ErrSpecValidation)
}

func TestValidate_DefaultSpecWithGoal(t *testing.T) {
	t.Parallel()

	require.NoError(t, Validate(validSpec()))
}

func TestValidate_BoundaryValues(t *testing.T) {
	t.Parallel()

	low := validSpec()
	low.MaxSlices, low.MaxAttemptsPerSlice, low.MaxFilesPerSlice, low.CommandTimeoutSeconds = 1, 1, 1, 60
	require.NoError(t, Validate(low))

	high := validSpec()
	high.MaxSlices, high.MaxAttemptsPerSlice, high.MaxFilesPerSlice, high.CommandTimeoutSeconds = 20, 10, 20, 10000
	require.NoError(t, Validate(high))
}

func TestValidate_Messages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Spec)
		want   string
	}{
		{"bounds", func(s *Spec) { s.MaxSlices = 25 }, "spec field 'max_slices' must be between 1 and 20, got 25"},
		{"required", func(s *Spec) { s.Model = "" }, "spec field 'model' is required"},
		{"oneof", func(s *Spec) { s.ModelBackend = "grpc" }, "spec field 'model_backend' must be one of [auto http sandboxed-cli]"},
		{"url", func(s *Spec) { s.APIBaseURL = "not a url" }, "spec field 'api_base_url' must be a URL"},
		{"relpath", func(s *Spec) { s.ContextFiles = []string{"ok.md", "/etc/passwd"} }, "context_files[1]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			spec := validSpec()
			tc.mutate(spec)

			err := Validate(spec)
			require.ErrorIs(t, err, slicererrors.ErrSpecValidation)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
