package config

import (
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/mrz1836/slicer/internal/constants"
)

// ReasoningEfforts lists the values accepted for CODEX_REASONING_EFFORT.
//
//nolint:gochecknoglobals // Fixed enum
var ReasoningEfforts = []string{"minimal", "low", "medium", "high", "xhigh"}

// BackendConfig holds backend settings taken from the environment.
type BackendConfig struct {
	// APIKey authenticates the http backend (SLICER_API_KEY, else OPENAI_API_KEY).
	APIKey string

	// CodexBin is the sandboxed CLI executable (CODEX_CLI_BIN).
	// Default: codex
	CodexBin string

	// ReasoningEffort is passed to the sandboxed CLI (CODEX_REASONING_EFFORT).
	// Default: low. Unknown values fall back to the default.
	ReasoningEffort string
}

// HasAPIKey reports whether the http backend can authenticate.
func (c BackendConfig) HasAPIKey() bool {
	return c.APIKey != ""
}

// LoadBackendConfig reads backend settings from the environment.
func LoadBackendConfig() BackendConfig {
	v := viper.New()
	setBackendDefaults(v)
	_ = v.BindEnv("api_key", "SLICER_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("codex_bin", "CODEX_CLI_BIN")
	_ = v.BindEnv("reasoning_effort", "CODEX_REASONING_EFFORT")

	cfg := BackendConfig{
		APIKey:          strings.TrimSpace(v.GetString("api_key")),
		CodexBin:        strings.TrimSpace(v.GetString("codex_bin")),
		ReasoningEffort: strings.ToLower(strings.TrimSpace(v.GetString("reasoning_effort"))),
	}
	if cfg.CodexBin == "" {
		cfg.CodexBin = constants.DefaultCodexBin
	}
	if !slices.Contains(ReasoningEfforts, cfg.ReasoningEffort) {
		cfg.ReasoningEffort = constants.DefaultReasoningEffort
	}
	return cfg
}
