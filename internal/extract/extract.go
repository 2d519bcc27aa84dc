// Package extract recovers a single JSON object from free-form model output.
//
// Models are asked for strict JSON but routinely wrap it in markdown fences or
// prepend a sentence. Object applies an ordered set of strategies and reports
// failure explicitly, leaving the fatal-or-degraded decision to the caller.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/mrz1836/slicer/internal/errors"
)

// fencePattern matches the first fenced block, optionally tagged json.
var fencePattern = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)```")

// previewChars bounds how much of the offending text appears in an error message.
const previewChars = 500

// ParseError reports model output that holds no recoverable JSON object.
// Text keeps the full original output for diagnostics.
type ParseError struct {
	Text string
}

// Error implements the error interface with a bounded preview of the text.
func (e *ParseError) Error() string {
	preview := e.Text
	if len(preview) > previewChars {
		preview = preview[:previewChars] + "..."
	}
	return fmt.Sprintf("%s: %q", errors.ErrParse.Error(), preview)
}

// Unwrap lets errors.Is match ErrParse.
func (e *ParseError) Unwrap() error {
	return errors.ErrParse
}

// Object returns the JSON object carried by text. Strategies, first success wins:
//
//  1. a fenced block replaces the working text with its interior
//  2. the whole working text parses as an object
//  3. scanning left to right, an object decoded at some '{' is followed only by whitespace
//
// Blank text fails with ErrEmptyResponse (which also matches ErrParse).
// Anything else fails with a *ParseError.
func Object(text string) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %w", errors.ErrEmptyResponse, errors.ErrParse)
	}

	working := unfence(text)

	if obj, ok := wholeObject(working); ok {
		return obj, nil
	}
	if obj, ok := scanObject(working); ok {
		return obj, nil
	}
	return nil, &ParseError{Text: text}
}

// unfence returns the trimmed interior of the first fenced block, or the trimmed text.
func unfence(text string) string {
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

func wholeObject(text string) (map[string]any, bool) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}

// scanObject tries an incremental decode at every '{'. A decoded object only
// counts when nothing but whitespace follows it.
func scanObject(text string) (map[string]any, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		var v any
		if err := dec.Decode(&v); err != nil {
			continue
		}
		obj, ok := v.(map[string]any)
		if !ok {
			continue
		}
		rest := text[i+int(dec.InputOffset()):]
		if strings.TrimSpace(rest) == "" {
			return obj, true
		}
	}
	return nil, false
}
