package prompts

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Render executes a prompt template with the provided data and returns the
// result with surrounding whitespace trimmed. The data type must match the
// prompt ID.
//
// Example:
//
//	prompt, err := prompts.Render(prompts.SelectUser, prompts.SelectData{
//	    Slice:     slice,
//	    RepoFiles: files,
//	    MaxFiles:  8,
//	})
func Render(id PromptID, data any) (string, error) {
	if err := ValidateData(id, data); err != nil {
		return "", err
	}
	tmpl, err := globalRegistry.get(id)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Join(ErrTemplateExecution, fmt.Errorf("prompt %s: %w", id, err))
	}

	return strings.TrimSpace(buf.String()), nil
}

// System renders a role's system prompt. System prompts take no data.
func System(id PromptID) (string, error) {
	return Render(id, nil)
}

// List returns all registered prompt IDs, sorted.
func List() []PromptID {
	return slices.Sorted(maps.Keys(globalRegistry))
}

// Exists checks if a prompt ID is registered.
func Exists(id PromptID) bool {
	_, err := globalRegistry.get(id)
	return err == nil
}

// ValidateData checks that data has the type the prompt ID expects.
func ValidateData(id PromptID, data any) error {
	var ok bool
	switch id {
	case PlanUser:
		_, ok = data.(PlanData)
	case SelectUser:
		_, ok = data.(SelectData)
	case ImplementUser:
		_, ok = data.(ImplementData)
	case ReviewUser:
		_, ok = data.(ReviewData)
	default:
		return nil
	}
	if !ok {
		return fmt.Errorf("%w: prompt %s got %T", ErrInvalidData, id, data)
	}
	return nil
}
