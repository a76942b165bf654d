package scenario

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Reserved selection tokens.
const (
	AllToken  = "ALL"
	QuitToken = `\q`
)

// ErrNotFound is returned by Resolve for tokens that name no scenario.
var ErrNotFound = errors.New("scenario not found")

// Catalog maps scenario names and ordinals to scenarios.
// It is read-only once built.
type Catalog struct {
	ordered   []Scenario
	byName    map[string]Scenario
	byOrdinal map[string]Scenario
}

// NewCatalog registers scenarios in order. Each is reachable by its name and
// by its zero-based ordinal.
//
// Returns an error for empty names, duplicate names, all-digit names (which
// would shadow ordinals) and the reserved tokens ALL and \q.
func NewCatalog(scenarios ...Scenario) (*Catalog, error) {
	c := &Catalog{
		ordered:   make([]Scenario, 0, len(scenarios)),
		byName:    make(map[string]Scenario, len(scenarios)),
		byOrdinal: make(map[string]Scenario, len(scenarios)),
	}
	for _, s := range scenarios {
		if err := c.register(s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustCatalog is NewCatalog for catalogs fixed at build time.
// It panics on a registration error.
func MustCatalog(scenarios ...Scenario) *Catalog {
	c, err := NewCatalog(scenarios...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) register(s Scenario) error {
	name := Normalize(s.Name())
	switch {
	case name == "":
		return fmt.Errorf("scenario %d: name is required", len(c.ordered))
	case name == AllToken || name == QuitToken:
		return fmt.Errorf("scenario %d: name %q is reserved", len(c.ordered), name)
	case isOrdinal(name):
		return fmt.Errorf("scenario %d: name %q would shadow an ordinal", len(c.ordered), name)
	}
	if _, exists := c.byName[name]; exists {
		return fmt.Errorf("duplicate scenario name %q", name)
	}

	c.byName[name] = s
	c.byOrdinal[strconv.Itoa(len(c.ordered))] = s
	c.ordered = append(c.ordered, s)
	return nil
}

// Resolve looks token up by exact name, then by ordinal.
func (c *Catalog) Resolve(token string) (Scenario, error) {
	token = Normalize(token)
	if s, ok := c.byName[token]; ok {
		return s, nil
	}
	if s, ok := c.byOrdinal[token]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, token)
}

// Scenarios returns the scenarios in registration order.
func (c *Catalog) Scenarios() []Scenario {
	out := make([]Scenario, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Len returns the number of registered scenarios.
func (c *Catalog) Len() int {
	return len(c.ordered)
}

// Normalize trims surrounding whitespace and applies Unicode NFC so that
// names typed at a terminal match names read from catalog files.
func Normalize(token string) string {
	return norm.NFC.String(strings.TrimSpace(token))
}

func isOrdinal(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
