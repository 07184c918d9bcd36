// Package form holds the state of the five-step grant application wizard.
package form

import (
	"encoding/json"
	"maps"
)

// Controller owns the current step and the accumulated field values.
// It performs no validation; that belongs to the view layer.
type Controller struct {
	catalog *Catalog
	step    Step
	fields  map[string]string
}

// NewController creates a controller at step 1 with every catalog field empty.
// A nil catalog selects DefaultCatalog.
func NewController(c *Catalog) *Controller {
	if c == nil {
		c = DefaultCatalog()
	}
	ctl := &Controller{catalog: c}
	ctl.Reset()
	return ctl
}

// Catalog returns the field catalog the controller was built with.
func (c *Controller) Catalog() *Catalog {
	return c.catalog
}

// SetField writes value under name unconditionally.
func (c *Controller) SetField(name, value string) {
	c.fields[name] = value
}

// Field returns the current value of name, or "" when never written.
func (c *Controller) Field(name string) string {
	return c.fields[name]
}

// Step returns the current step.
func (c *Controller) Step() Step {
	return c.step
}

// Next advances one step. It is a no-op on the last step.
func (c *Controller) Next() Step {
	c.step = (c.step + 1).Clamp()
	return c.step
}

// Previous goes back one step. It is a no-op on the first step.
func (c *Controller) Previous() Step {
	c.step = (c.step - 1).Clamp()
	return c.step
}

// View returns the view of the current step.
func (c *Controller) View() View {
	return c.catalog.ViewOf(c.step)
}

// Reset replaces all values with a fresh empty snapshot and returns to step 1.
func (c *Controller) Reset() {
	fields := make(map[string]string)
	for _, name := range c.catalog.Names() {
		fields[name] = ""
	}
	c.fields = fields
	c.step = FirstStep
}

// Load replaces the field values wholesale with values. Catalog fields absent
// from values are empty afterwards.
func (c *Controller) Load(values map[string]string) {
	c.Reset()
	maps.Copy(c.fields, values)
}

// Snapshot returns a copy of the current state that later edits do not affect.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{Step: c.step, Fields: maps.Clone(c.fields)}
}

// Snapshot is an immutable copy of the form at a point in time.
type Snapshot struct {
	Step   Step
	Fields map[string]string
}

// Get returns the value of name.
func (s Snapshot) Get(name string) string {
	return s.Fields[name]
}

// JSON renders the field values as two-space indented JSON with sorted keys.
func (s Snapshot) JSON() string {
	fields := s.Fields
	if fields == nil {
		fields = map[string]string{}
	}
	b, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		// A map[string]string always marshals.
		return "{}"
	}
	return string(b)
}
