package scenario

import (
	"fmt"
	"path/filepath"
	"time"
)

// Definition is a table-driven scenario, usually decoded from a catalog file.
type Definition struct {
	ScenarioName string    `yaml:"name"`
	Expected     string    `yaml:"expected"`
	Description  string    `yaml:"description,omitempty"`
	Steps        []StepDef `yaml:"steps"`
}

// StepDef is the catalog form of a Step. Exactly one of Deliver, Sleep,
// Checkpoint and Note is set.
type StepDef struct {
	Deliver   string `yaml:"deliver,omitempty"`
	Rewrite   bool   `yaml:"rewrite,omitempty"`
	Unique    bool   `yaml:"unique,omitempty"`
	Expire    int    `yaml:"expire,omitempty"`
	Effective int    `yaml:"effective,omitempty"`
	Stagger   int    `yaml:"stagger,omitempty"`

	Sleep string `yaml:"sleep,omitempty"`

	Checkpoint string `yaml:"checkpoint,omitempty"`
	Otherwise  string `yaml:"otherwise,omitempty"`

	Note string `yaml:"note,omitempty"`
}

// Name implements Scenario.
func (d *Definition) Name() string {
	return d.ScenarioName
}

// ExpectedResult implements Scenario.
func (d *Definition) ExpectedResult() string {
	return d.Expected
}

// Prepare builds the steps with delivery sources resolved against dataDir.
func (d *Definition) Prepare(dataDir string) ([]Step, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("scenario %s: data directory is required", d.ScenarioName)
	}

	steps := make([]Step, 0, len(d.Steps))
	for i, def := range d.Steps {
		step, err := def.build(dataDir)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: step %d: %w", d.ScenarioName, i, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// validate checks the parts of a definition the schema cannot express.
func (d *Definition) validate() error {
	for i, def := range d.Steps {
		if _, err := def.build("."); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

func (def StepDef) build(dataDir string) (Step, error) {
	set := 0
	for _, s := range []string{def.Deliver, def.Sleep, def.Checkpoint, def.Note} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of deliver, sleep, checkpoint or note must be set")
	}

	switch {
	case def.Deliver != "":
		return Deliver{
			Source:           filepath.Join(dataDir, filepath.FromSlash(def.Deliver)),
			RewriteHeader:    def.Rewrite,
			MakeUnique:       def.Unique,
			ExpireMinutes:    def.Expire,
			EffectiveMinutes: def.Effective,
			StaggerMinutes:   def.Stagger,
		}, nil

	case def.Sleep != "":
		d, err := time.ParseDuration(def.Sleep)
		if err != nil {
			return nil, fmt.Errorf("sleep: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("sleep must be positive, got %s", def.Sleep)
		}
		return Sleep{Duration: d}, nil

	case def.Checkpoint != "":
		otherwise := Otherwise(def.Otherwise)
		switch otherwise {
		case "":
			otherwise = OtherwiseStop
		case OtherwiseStop, OtherwiseContinue:
		default:
			return nil, fmt.Errorf("otherwise must be %q or %q, got %q", OtherwiseStop, OtherwiseContinue, def.Otherwise)
		}
		return Checkpoint{Prompt: def.Checkpoint, Otherwise: otherwise}, nil

	default:
		return Note{Text: def.Note}, nil
	}
}
