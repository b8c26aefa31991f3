// Package library loads exercise templates from YAML.
package library

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/types"
)

//go:embed default_library.yaml
var defaultLibrary []byte

// ErrInvalidLibrary reports a template file that cannot be used.
var ErrInvalidLibrary = errors.New("invalid template library")

// Library is a read-only set of exercise templates.
type Library struct {
	templates []model.ExerciseTemplate
	byID      map[string]int
}

type libraryFile struct {
	Templates []model.ExerciseTemplate `yaml:"templates"`
}

// Default returns the embedded library.
func Default() (*Library, error) {
	return Decode(bytes.NewReader(defaultLibrary))
}

// Load reads a library file. An empty path loads the embedded default.
func Load(path string) (*Library, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open library: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses and validates a YAML library. Category names are matched
// case-insensitively; duplicate IDs and unusable templates are rejected.
func Decode(r io.Reader) (*Library, error) {
	var f libraryFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLibrary, err)
	}
	if len(f.Templates) == 0 {
		return nil, fmt.Errorf("%w: no templates", ErrInvalidLibrary)
	}

	lib := &Library{byID: make(map[string]int, len(f.Templates))}
	for i, t := range f.Templates {
		c, err := types.ParseCategory(string(t.Category))
		if err != nil {
			return nil, fmt.Errorf("%w: template %q: %v", ErrInvalidLibrary, t.ID, err)
		}
		t.Category = c
		if !t.Valid() {
			return nil, fmt.Errorf("%w: template %d (%q) needs an id, sets and a duration", ErrInvalidLibrary, i, t.ID)
		}
		if _, dup := lib.byID[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate template id %q", ErrInvalidLibrary, t.ID)
		}
		lib.byID[t.ID] = len(lib.templates)
		lib.templates = append(lib.templates, t)
	}
	return lib, nil
}

// Templates returns a copy of every template, in file order.
func (l *Library) Templates() []model.ExerciseTemplate {
	out := make([]model.ExerciseTemplate, len(l.templates))
	copy(out, l.templates)
	return out
}

// Get returns a template by ID.
func (l *Library) Get(id string) (model.ExerciseTemplate, bool) {
	i, ok := l.byID[id]
	if !ok {
		return model.ExerciseTemplate{}, false
	}
	return l.templates[i], true
}

// Categories returns the categories covered by at least one template.
func (l *Library) Categories() []types.Category {
	seen := make(map[types.Category]bool)
	var out []types.Category
	for _, t := range l.templates {
		if !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
