package config

import (
	"github.com/spf13/viper"

	"github.com/mrz1836/slicer/internal/constants"
)

// DefaultSpec returns a Spec carrying every documented default.
// A loaded spec file is decoded on top of it, so absent fields keep these values.
func DefaultSpec() *Spec {
	return &Spec{
		ModelBackend:          constants.DefaultBackend,
		Model:                 constants.DefaultModel,
		APIBaseURL:            constants.DefaultAPIBaseURL,
		MaxSlices:             constants.DefaultMaxSlices,
		MaxAttemptsPerSlice:   constants.DefaultMaxAttemptsPerSlice,
		MaxFilesPerSlice:      constants.DefaultMaxFilesPerSlice,
		CommandTimeoutSeconds: constants.DefaultCommandTimeoutSeconds,
		WorkingDirectory:      constants.DefaultWorkingDirectory,
	}
}

// setBackendDefaults configures the environment-derived backend defaults.
func setBackendDefaults(v *viper.Viper) {
	v.SetDefault("codex_bin", constants.DefaultCodexBin)
	v.SetDefault("reasoning_effort", constants.DefaultReasoningEffort)
}
