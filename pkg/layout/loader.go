package layout

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownForm is returned when a catalog lookup misses.
	ErrUnknownForm = errors.New("layout: unknown form")
	// ErrDuplicateContainer flags two containers sharing an id.
	ErrDuplicateContainer = errors.New("layout: duplicate container id")
	// ErrNoLayouts is returned when a layout pattern matches no file.
	ErrNoLayouts = errors.New("layout: no files match")

	validateOnce sync.Once
	validateInst *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validateInst = validator.New(validator.WithRequiredStructEnabled())
	})
	return validateInst
}

// document is the on-disk shape: either a single form or a list under forms.
type document struct {
	Form  `yaml:",inline"`
	Forms []Form `yaml:"forms,omitempty" toml:"forms,omitempty"`
}

// Parse decodes YAML layouts. The payload can hold a single form or a
// top-level `forms` list.
func Parse(data []byte) ([]Form, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var doc document
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("layout: empty document")
		}
		return nil, fmt.Errorf("layout: decode: %w", err)
	}
	return doc.normalize()
}

// ParseTOML decodes the same shapes as Parse from TOML: top-level form keys
// or a `[[forms]]` array.
func ParseTOML(data []byte) ([]Form, error) {
	var doc document
	meta, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("layout: decode toml: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("layout: unknown key %q", undecoded[0].String())
	}
	return doc.normalize()
}

func (doc document) normalize() ([]Form, error) {
	forms := doc.Forms
	if doc.Form.ID != "" || len(doc.Form.Containers) > 0 {
		forms = append([]Form{doc.Form}, forms...)
	}
	if len(forms) == 0 {
		return nil, errors.New("layout: no forms declared")
	}

	out := make([]Form, 0, len(forms))
	for _, form := range forms {
		normalized, err := Normalize(form)
		if err != nil {
			return nil, err
		}
		out = append(out, normalized)
	}
	return out, nil
}

// Load reads layouts from a YAML file, or a TOML file when path ends in
// .toml.
func Load(path string) ([]Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("layout: read %s: %w", path, err)
	}
	parse := Parse
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		parse = ParseTOML
	}
	forms, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return forms, nil
}

// Glob expands layout patterns (doublestar syntax, so `layouts/**/*.yaml`
// works) into a sorted, de-duplicated file list. A pattern matching nothing
// is an error.
func Glob(patterns ...string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, pattern := range patterns {
		pattern = filepath.Clean(strings.TrimSpace(pattern))
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("layout: bad pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrNoLayouts, pattern)
		}
		for _, match := range matches {
			if _, dup := seen[match]; dup {
				continue
			}
			seen[match] = struct{}{}
			out = append(out, match)
		}
	}
	sort.Strings(out)
	return out, nil
}

// LoadAll loads every file matched by patterns, in path order.
func LoadAll(patterns ...string) ([]Form, error) {
	paths, err := Glob(patterns...)
	if err != nil {
		return nil, err
	}
	var out []Form
	for _, path := range paths {
		forms, err := Load(path)
		if err != nil {
			return nil, err
		}
		out = append(out, forms...)
	}
	return out, nil
}

// Normalize fills defaults and validates the form.
func Normalize(form Form) (Form, error) {
	form = form.clone()
	form.ID = strings.TrimSpace(form.ID)
	seen := make(map[string]struct{}, len(form.Containers))

	for i := range form.Containers {
		container := &form.Containers[i]
		container.ID = strings.TrimSpace(container.ID)
		container.RowKind = strings.TrimSpace(container.RowKind)
		if container.AddLabel == "" && container.AddTrigger != "" {
			container.AddLabel = "Add"
		}
		for j := range container.Fields {
			if container.Fields[j].Control == "" {
				container.Fields[j].Control = ControlInput
			}
		}
		if _, dup := seen[container.ID]; dup && container.ID != "" {
			return Form{}, fmt.Errorf("%w: %q in form %q", ErrDuplicateContainer, container.ID, form.ID)
		}
		seen[container.ID] = struct{}{}
	}

	if err := validatorInstance().Struct(form); err != nil {
		return Form{}, fmt.Errorf("layout: form %q: %w", form.ID, err)
	}
	return form, nil
}

// Catalog is a name-keyed set of layouts.
type Catalog struct {
	mu    sync.RWMutex
	forms map[string]Form
}

// NewCatalog returns a catalog seeded with the given forms.
func NewCatalog(forms ...Form) *Catalog {
	c := &Catalog{forms: make(map[string]Form)}
	for _, form := range forms {
		c.Put(form)
	}
	return c
}

// DefaultCatalog returns a catalog holding the built-in layouts.
func DefaultCatalog() *Catalog {
	return NewCatalog(Builtins()...)
}

// Put stores a form, replacing any form with the same id.
func (c *Catalog) Put(form Form) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forms[form.ID] = form.clone()
}

// Get retrieves a form by id.
func (c *Catalog) Get(id string) (Form, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	form, ok := c.forms[id]
	if !ok {
		return Form{}, fmt.Errorf("%w: %q", ErrUnknownForm, id)
	}
	return form.clone(), nil
}

// List returns the form ids sorted alphabetically.
func (c *Catalog) List() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.forms))
	for id := range c.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
