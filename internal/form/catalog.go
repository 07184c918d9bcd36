package form

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Kind selects how a field is presented.
type Kind string

const (
	KindText      Kind = "text"
	KindSelect    Kind = "select"
	KindMultiline Kind = "multiline"
	KindConfirm   Kind = "confirm"
)

// Field describes one input of the application.
type Field struct {
	Name     string   `yaml:"name"`
	Label    string   `yaml:"label"`
	Help     string   `yaml:"help,omitempty"`
	Kind     Kind     `yaml:"kind,omitempty"`
	Options  []string `yaml:"options,omitempty"`
	Validate string   `yaml:"validate,omitempty"`
	Required bool     `yaml:"required,omitempty"`
}

type catalogStep struct {
	Step   int     `yaml:"step"`
	Fields []Field `yaml:"fields"`
}

// Catalog is the full set of fields grouped by step.
type Catalog struct {
	Steps []catalogStep `yaml:"steps"`
}

// ParseCatalog decodes a YAML field catalog and checks that every step is in
// range and every field name is unique.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	seen := make(map[string]bool)
	for i, s := range c.Steps {
		if s.Step < int(FirstStep) || s.Step > int(LastStep) {
			return nil, fmt.Errorf("catalog step %d out of range", s.Step)
		}
		for j, f := range s.Fields {
			if f.Name == "" {
				return nil, fmt.Errorf("catalog step %d: field %d has no name", s.Step, j)
			}
			if seen[f.Name] {
				return nil, fmt.Errorf("catalog step %d: duplicate field %q", s.Step, f.Name)
			}
			seen[f.Name] = true
			if f.Kind == "" {
				c.Steps[i].Fields[j].Kind = KindText
			}
		}
	}
	return &c, nil
}

var (
	defaultCatalogOnce sync.Once
	defaultCatalog     *Catalog
)

// DefaultCatalog returns the embedded application catalog.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := ParseCatalog(catalogYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Fields returns the fields shown on step, in catalog order.
func (c *Catalog) Fields(step Step) []Field {
	var out []Field
	for _, s := range c.Steps {
		if s.Step == int(step) {
			out = append(out, s.Fields...)
		}
	}
	return out
}

// Names returns every field name across all steps.
func (c *Catalog) Names() []string {
	var names []string
	for _, s := range c.Steps {
		for _, f := range s.Fields {
			names = append(names, f.Name)
		}
	}
	return names
}

// Lookup finds a field by name.
func (c *Catalog) Lookup(name string) (Field, bool) {
	for _, s := range c.Steps {
		for _, f := range s.Fields {
			if f.Name == name {
				return f, true
			}
		}
	}
	return Field{}, false
}
