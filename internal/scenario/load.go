package scenario

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// catalogFile is the top-level catalog document.
type catalogFile struct {
	Scenarios []*Definition `yaml:"scenarios"`
}

// LoadCatalog reads a catalog file and builds a Catalog from it.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalog(data, path)
}

// ParseCatalog validates data against the catalog schema, decodes it with
// strict field checking, and registers the scenarios in file order.
// source is used in error messages only.
func ParseCatalog(data []byte, source string) (*Catalog, error) {
	if err := validateSchema(data); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	var file catalogFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("%s: failed to parse YAML: %w", source, err)
	}

	scenarios := make([]Scenario, 0, len(file.Scenarios))
	for _, def := range file.Scenarios {
		if err := def.validate(); err != nil {
			return nil, fmt.Errorf("%s: scenario %s: %w", source, def.ScenarioName, err)
		}
		scenarios = append(scenarios, def)
	}

	catalog, err := NewCatalog(scenarios...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return catalog, nil
}

// validateSchema unifies the YAML document with #Catalog.
func validateSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("catalog is empty")
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling catalog schema: %w", err)
	}

	value := schema.LookupPath(cue.ParsePath("#Catalog")).Unify(ctx.Encode(doc))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("catalog does not match schema: %s", cueerrors.Details(err, nil))
	}
	return nil
}
