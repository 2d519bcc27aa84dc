package prompts

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"reflect"
	"strings"
	"text/template"
)

//go:embed templates/common/*.tmpl templates/plan/*.tmpl templates/select/*.tmpl templates/implement/*.tmpl templates/review/*.tmpl
var templateFS embed.FS

const commonDir = "templates/common"

// registry maps prompt IDs to parsed templates. It is built once at init and
// never mutated afterwards, so reads need no locking.
type registry map[PromptID]*template.Template

// globalRegistry is the set of embedded prompts.
//
//nolint:gochecknoglobals // immutable after init
var globalRegistry registry

//nolint:gochecknoinits // embedded templates are parsed once at startup
func init() {
	r, err := loadRegistry(templateFS)
	if err != nil {
		// Templates are embedded, so this is a build defect.
		panic(fmt.Sprintf("failed to load embedded templates: %v", err))
	}
	globalRegistry = r
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		// toJSON renders a value as compact JSON; nil slices render as []
		"toJSON": toJSON,
		// orNone substitutes "[none]" for blank text
		"orNone": func(s string) string { return orDefault(s, "[none]") },
		// orDefault substitutes def for blank text
		"orDefault": func(def, s string) string { return orDefault(s, def) },
	}
}

// toJSON encodes v without HTML escaping so paths and commands stay readable.
func toJSON(v any) (string, error) {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice && rv.IsNil() {
		return "[]", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// loadRegistry parses every role template in fsys. Partials under
// templates/common are shared by all of them as "common/<name>".
func loadRegistry(fsys fs.FS) (registry, error) {
	base, err := loadCommon(fsys)
	if err != nil {
		return nil, err
	}

	r := make(registry)
	err = fs.WalkDir(fsys, "templates", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || path.Ext(p) != ".tmpl" || path.Dir(p) == commonDir {
			return nil
		}

		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("reading template %s: %w", p, err)
		}

		tmpl, err := base.Clone()
		if err != nil {
			return fmt.Errorf("cloning base for %s: %w", p, err)
		}
		// templates/plan/user.tmpl -> plan/user
		id := pathToPromptID(p)
		if _, err := tmpl.New(string(id)).Parse(string(content)); err != nil {
			return fmt.Errorf("parsing template %s: %w", p, err)
		}
		r[id] = tmpl.Lookup(string(id))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// loadCommon parses the shared partials into one base template set.
func loadCommon(fsys fs.FS) (*template.Template, error) {
	base := template.New("").Funcs(funcMap()).Option("missingkey=error")

	entries, err := fs.ReadDir(fsys, commonDir)
	if err != nil {
		return nil, fmt.Errorf("loading common templates: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".tmpl" {
			continue
		}
		p := path.Join(commonDir, entry.Name())
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("reading common template %s: %w", p, err)
		}
		name := "common/" + strings.TrimSuffix(entry.Name(), ".tmpl")
		if _, err := base.New(name).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("parsing common template %s: %w", p, err)
		}
	}
	return base, nil
}

func pathToPromptID(p string) PromptID {
	return PromptID(strings.TrimSuffix(strings.TrimPrefix(p, "templates/"), ".tmpl"))
}

func (r registry) get(id PromptID) (*template.Template, error) {
	tmpl, ok := r[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return tmpl, nil
}
