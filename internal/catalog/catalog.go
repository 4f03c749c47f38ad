// Package catalog holds the fixed, ordered sequence of steps every job walks through.
//
// Step messages are data, not closures: a format string plus the names of the
// context fields substituted into it. A catalog is immutable once built.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Context field names available to step templates.
const (
	FieldLocation = "location"
	FieldCity     = "city"
	FieldState    = "state"
	FieldModel    = "model"
	FieldDevice   = "device"
)

var (
	ErrEmptyCatalog   = errors.New("catalog: no steps")
	ErrEmptyLabel     = errors.New("catalog: empty step label")
	ErrDuplicateLabel = errors.New("catalog: duplicate step label")
	ErrTemplateArity  = errors.New("catalog: format verbs do not match fields")
)

// StepDef describes one step: its label and how to build its log line.
type StepDef struct {
	Label  string   `json:"label"`
	Format string   `json:"format"`
	Fields []string `json:"fields,omitempty"`
}

// Render builds the step's log message from the given context values.
// Missing fields render as empty strings.
func (d StepDef) Render(values map[string]string) string {
	if len(d.Fields) == 0 {
		return d.Format
	}
	args := make([]any, len(d.Fields))
	for i, f := range d.Fields {
		args[i] = values[f]
	}
	return fmt.Sprintf(d.Format, args...)
}

func (d StepDef) validate() error {
	if strings.TrimSpace(d.Label) == "" {
		return ErrEmptyLabel
	}
	verbs := strings.Count(d.Format, "%s")
	if strings.Count(d.Format, "%")-2*strings.Count(d.Format, "%%") != verbs || verbs != len(d.Fields) {
		return fmt.Errorf("%w: step %q", ErrTemplateArity, d.Label)
	}
	return nil
}

// Catalog is an ordered, read-only list of step definitions.
type Catalog struct {
	steps []StepDef
	index map[string]int
}

// New builds a catalog from the given definitions in order.
func New(defs ...StepDef) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		steps: make([]StepDef, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	for i, d := range defs {
		if err := d.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.index[d.Label]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLabel, d.Label)
		}
		d.Fields = append([]string(nil), d.Fields...)
		c.steps[i] = d
		c.index[d.Label] = i
	}
	return c, nil
}

// MustNew is like New but panics on an invalid definition list.
func MustNew(defs ...StepDef) *Catalog {
	c, err := New(defs...)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the account-creation step sequence.
func Default() *Catalog {
	return MustNew(
		StepDef{Label: "generating proxy", Format: "Generating proxy for %s", Fields: []string{FieldLocation}},
		StepDef{Label: "proxy assigned", Format: "Proxy assigned"},
		StepDef{Label: "generating email", Format: "Generating email"},
		StepDef{Label: "requesting phone number", Format: "Phone number received"},
		StepDef{Label: "starting script", Format: "Script started"},
		StepDef{Label: "opening app", Format: "Opening app"},
		StepDef{Label: "creating account", Format: "Account creation started"},
	)
}

// Len returns the number of steps.
func (c *Catalog) Len() int { return len(c.steps) }

// At returns the step at index i.
func (c *Catalog) At(i int) (StepDef, bool) {
	if i < 0 || i >= len(c.steps) {
		return StepDef{}, false
	}
	return c.steps[i], true
}

// Lookup finds a step by label and returns it with its index.
func (c *Catalog) Lookup(label string) (StepDef, int, bool) {
	i, ok := c.index[label]
	if !ok {
		return StepDef{}, -1, false
	}
	return c.steps[i], i, true
}

// Labels returns the step labels in order.
func (c *Catalog) Labels() []string {
	out := make([]string, len(c.steps))
	for i, s := range c.steps {
		out[i] = s.Label
	}
	return out
}

// Steps returns a copy of the step definitions.
func (c *Catalog) Steps() []StepDef {
	out := make([]StepDef, len(c.steps))
	for i, s := range c.steps {
		s.Fields = append([]string(nil), s.Fields...)
		out[i] = s
	}
	return out
}

func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Steps())
}
