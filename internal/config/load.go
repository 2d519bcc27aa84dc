package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/slicer/internal/constants"
	"github.com/mrz1836/slicer/internal/errors"
	"github.com/mrz1836/slicer/internal/pathutil"
)

// LoadSpec reads, normalizes and validates the spec file at path.
//
// Fields absent from the file keep the values from DefaultSpec. Values with
// the wrong JSON type, non-integral numbers for integer fields, and numbers
// outside their bounds are rejected with ErrSpecValidation naming the field.
// Nothing in this function talks to a model backend.
func LoadSpec(ctx context.Context, path string) (*Spec, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is the user-supplied --spec flag
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrSpecNotFound, "%s", path)
		}
		return nil, errors.Wrapf(err, "failed to read spec file %s", path)
	}

	v := viper.New()
	v.SetConfigType(configType(path))
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		if isNonObjectJSON(data) {
			return nil, errors.Wrap(errors.ErrSpecValidation, "spec root must be a JSON object")
		}
		return nil, fmt.Errorf("%w: %s: %s", errors.ErrSpecInvalidJSON, path, err.Error())
	}

	spec := DefaultSpec()
	if err := v.Unmarshal(spec, specDecoderOption()); err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrSpecValidation, err.Error())
	}

	if err := spec.normalize(); err != nil {
		return nil, err
	}

	if err := Validate(spec); err != nil {
		return nil, err
	}

	// Validated above, so every entry normalizes cleanly.
	spec.ContextFiles = pathutil.FilterSafe(spec.ContextFiles)

	zerolog.Ctx(ctx).Debug().
		Str("component", "config").
		Str("spec_path", path).
		Str("model_backend", spec.ModelBackend).
		Str("model", spec.Model).
		Int("max_slices", spec.MaxSlices).
		Int("max_attempts_per_slice", spec.MaxAttemptsPerSlice).
		Str("working_directory", spec.WorkingDirectory).
		Msg("spec loaded")

	return spec, nil
}

// configType picks the viper parser from the file extension. JSON is the default.
func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// isNonObjectJSON reports whether data is valid JSON whose root is not an object.
func isNonObjectJSON(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return json.Valid(trimmed) && len(trimmed) > 0 && trimmed[0] != '{'
}

// specDecoderOption configures mapstructure for strict decoding.
// Viper's defaults are weakly typed ("3" would become 3); the spec format is not.
func specDecoderOption() viper.DecoderConfigOption {
	return func(c *mapstructure.DecoderConfig) {
		c.TagName = "json"
		c.WeaklyTypedInput = false
		c.DecodeHook = mapstructure.ComposeDecodeHookFunc(integralNumberHook())
	}
}

// integralNumberHook rejects fractional numbers bound for integer fields.
// mapstructure otherwise truncates 2.5 to 2 without complaint.
func integralNumberHook() mapstructure.DecodeHookFuncKind {
	return func(from, to reflect.Kind, data any) (any, error) {
		if to != reflect.Int {
			return data, nil
		}
		if from != reflect.Float64 && from != reflect.Float32 {
			return data, nil
		}
		f := reflect.ValueOf(data).Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("expected an integer, got %v", f) //nolint:err113 // mapstructure prefixes the field name
		}
		return data, nil
	}
}

// normalize trims free text, drops blank list items, resolves backend aliases
// and makes the working directory absolute.
func (s *Spec) normalize() error {
	s.Goal = strings.TrimSpace(s.Goal)
	s.Model = strings.TrimSpace(s.Model)
	s.PlannerNotes = strings.TrimSpace(s.PlannerNotes)
	s.ImplementerNotes = strings.TrimSpace(s.ImplementerNotes)
	s.ReviewerNotes = strings.TrimSpace(s.ReviewerNotes)

	s.Constraints = cleanList(s.Constraints)
	s.AcceptanceCriteria = cleanList(s.AcceptanceCriteria)
	s.CheckCommands = cleanList(s.CheckCommands)
	s.ContextFiles = cleanList(s.ContextFiles)

	s.ModelBackend = normalizeBackend(s.ModelBackend)
	s.APIBaseURL = strings.TrimRight(strings.TrimSpace(s.APIBaseURL), "/")

	dir := strings.TrimSpace(s.WorkingDirectory)
	if dir == "" {
		dir = constants.DefaultWorkingDirectory
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return errors.Wrapf(errors.ErrSpecValidation, "spec field 'working_directory' cannot be resolved: %s", err.Error())
	}
	s.WorkingDirectory = abs
	return nil
}

// normalizeBackend lowercases the selector and maps legacy names.
func normalizeBackend(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "":
		return constants.DefaultBackend
	case constants.BackendAliasOpenAI:
		return constants.BackendHTTP
	case constants.BackendAliasCodexCLI:
		return constants.BackendSandboxedCLI
	default:
		return name
	}
}

// cleanList trims every item and drops the blank ones.
func cleanList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
