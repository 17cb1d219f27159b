// Package catalog holds the static workout templates and weekly program targets.
package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// ProgramWeeks is the length of the preparation program.
const ProgramWeeks = 12

//go:embed catalog.yaml
var embedded []byte

// Provider is what the session manager needs from a catalog.
type Provider interface {
	ListTemplates() []WorkoutTemplate
}

type Catalog struct {
	templates []WorkoutTemplate
	byID      map[string]int
	targets   map[int]WeekTarget
}

type document struct {
	Templates   []WorkoutTemplate `yaml:"templates"`
	WeekTargets []WeekTarget      `yaml:"week_targets"`
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Parse(embedded)
	})
	return defaultCat, defaultErr
}

// MustDefault is Default for callers that treat a broken embedded catalog as a programming error.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(doc.Templates, doc.WeekTargets)
}

// New builds a catalog from already decoded templates and targets.
func New(templates []WorkoutTemplate, targets []WeekTarget) (*Catalog, error) {
	c := &Catalog{
		byID:    make(map[string]int, len(templates)),
		targets: make(map[int]WeekTarget, len(targets)),
	}
	for i, t := range templates {
		if err := validateTemplate(t); err != nil {
			return nil, err
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		c.byID[t.ID] = i
	}
	for _, wt := range targets {
		if wt.Week < 1 || wt.Week > ProgramWeeks {
			return nil, fmt.Errorf("week target %d out of range 1..%d", wt.Week, ProgramWeeks)
		}
		c.targets[wt.Week] = wt
	}
	c.templates = templates
	return c, nil
}

func validateTemplate(t WorkoutTemplate) error {
	if t.ID == "" {
		return fmt.Errorf("template %q: missing id", t.Name)
	}
	if len(t.Exercises) == 0 {
		return fmt.Errorf("template %q: no exercises", t.ID)
	}
	for _, ex := range t.Exercises {
		switch {
		case ex.Duration <= 0:
			return fmt.Errorf("template %q, exercise %q: duration must be positive", t.ID, ex.ID)
		case ex.RestTime < 0:
			return fmt.Errorf("template %q, exercise %q: negative rest", t.ID, ex.ID)
		case ex.Sets < 1:
			return fmt.Errorf("template %q, exercise %q: needs at least one set", t.ID, ex.ID)
		case !ex.Category.Valid():
			return fmt.Errorf("template %q, exercise %q: unknown category %q", t.ID, ex.ID, ex.Category)
		}
	}
	return nil
}

// ListTemplates returns copies of the templates in catalog order.
func (c *Catalog) ListTemplates() []WorkoutTemplate {
	out := make([]WorkoutTemplate, len(c.templates))
	for i, t := range c.templates {
		out[i] = t.Clone()
	}
	return out
}

func (c *Catalog) Template(id string) (WorkoutTemplate, bool) {
	i, ok := c.byID[id]
	if !ok {
		return WorkoutTemplate{}, false
	}
	return c.templates[i].Clone(), true
}

func (c *Catalog) WeekTarget(week int) (WeekTarget, bool) {
	wt, ok := c.targets[week]
	return wt, ok
}
