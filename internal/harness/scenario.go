package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/choicegen/internal/filter"
	"github.com/roach88/choicegen/internal/ir"
)

// Scenario is a decision script run under one generation mode, plus the
// assertions its emitted signatures must satisfy.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Mode is random, exhaustive or delta.
	Mode ir.Mode `yaml:"mode"`

	// Seed seeds the random provider (and the hand-off of delta runs).
	Seed uint64 `yaml:"seed,omitempty"`

	// MaxDepth bounds exhaustive runs. Default: 4.
	MaxDepth int `yaml:"max_depth,omitempty"`

	// Programs is the number of programs to emit. Zero means the mode's
	// default: one for random runs, the whole tree for exhaustive runs.
	Programs int `yaml:"programs,omitempty"`

	// DebugSequence replays one decision sequence ("1_0_2") instead of
	// searching. Exhaustive mode only.
	DebugSequence string `yaml:"debug_sequence,omitempty"`

	// Input is the delta replay input, one "value,bound" pair per line.
	Input string `yaml:"input,omitempty"`

	// NoReduction keeps delta runs from handing off to the random provider.
	NoReduction bool `yaml:"no_reduction,omitempty"`

	// Script is the decision script every attempt executes in order.
	Script []Step `yaml:"script"`

	// Assertions are checked against the emitted signatures.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one decision of a script. Exactly one of Upto, Bool or Guard is
// set.
type Step struct {
	// Upto draws a value in [0, Upto).
	Upto int `yaml:"upto,omitempty"`

	// Bool draws a boolean that is true with probability *Bool percent.
	Bool *int `yaml:"bool,omitempty"`

	// Guard asks the depth guard whether Guard more decisions fit.
	Guard int `yaml:"guard,omitempty"`

	// Exclude lists values the decision must not take.
	Exclude []int `yaml:"exclude,omitempty"`

	// Modes scopes Exclude to some provider kinds (default, dfs, delta).
	// Empty means every kind.
	Modes []string `yaml:"modes,omitempty"`

	// Label names the decision in provider traces.
	Label string `yaml:"label,omitempty"`
}

// Assertion is a check over the emitted signatures.
type Assertion struct {
	// Type is one of: count, unique, contains, never.
	Type string `yaml:"type"`

	// Count is the expected number of emitted programs (count).
	Count int `yaml:"count,omitempty"`

	// Signature must have been emitted (contains).
	Signature string `yaml:"signature,omitempty"`

	// Position and Value: no emitted signature holds Value at Position
	// (never).
	Position int `yaml:"position,omitempty"`
	Value    int `yaml:"value,omitempty"`
}

// Assertion types.
const (
	AssertCount    = "count"
	AssertUnique   = "unique"
	AssertContains = "contains"
	AssertNever    = "never"
)

const defaultScenarioDepth = 4

// LoadScenario loads and validates a scenario from a YAML file.
//
// Unknown fields are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario from YAML bytes.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.MaxDepth == 0 {
		scenario.MaxDepth = defaultScenarioDepth
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch s.Mode {
	case ir.ModeRandom, ir.ModeExhaustive:
	case ir.ModeDelta:
		if s.Input == "" {
			return fmt.Errorf("delta scenarios require input")
		}
	default:
		return fmt.Errorf("mode must be random, exhaustive or delta, got %q", s.Mode)
	}

	if s.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be positive, got %d", s.MaxDepth)
	}

	if s.Programs < 0 {
		return fmt.Errorf("programs must not be negative, got %d", s.Programs)
	}

	if s.DebugSequence != "" && s.Mode != ir.ModeExhaustive {
		return fmt.Errorf("debug_sequence requires exhaustive mode")
	}

	if len(s.Script) == 0 {
		return fmt.Errorf("script list is required and must be non-empty")
	}

	for i, step := range s.Script {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("script[%d]: %w", i, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}

	return nil
}

func validateStep(step Step) error {
	set := 0
	if step.Upto != 0 {
		set++
	}
	if step.Bool != nil {
		set++
	}
	if step.Guard != 0 {
		set++
	}
	if set != 1 {
		return fmt.Errorf("exactly one of upto, bool or guard is required")
	}

	if step.Upto < 0 {
		return fmt.Errorf("upto must be positive, got %d", step.Upto)
	}
	if step.Bool != nil && (*step.Bool < 0 || *step.Bool > 100) {
		return fmt.Errorf("bool probability must be in [0, 100], got %d", *step.Bool)
	}
	if step.Guard < 0 {
		return fmt.Errorf("guard must be positive, got %d", step.Guard)
	}
	if step.Guard != 0 && (len(step.Exclude) > 0 || len(step.Modes) > 0) {
		return fmt.Errorf("guard steps take no filter")
	}
	if _, err := parseModes(step.Modes); err != nil {
		return err
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertCount:
		if a.Count < 0 {
			return fmt.Errorf("count must not be negative")
		}
	case AssertUnique:
	case AssertContains:
		if a.Signature == "" {
			return fmt.Errorf("contains assertion requires signature")
		}
	case AssertNever:
		if a.Position < 0 {
			return fmt.Errorf("never assertion requires a non-negative position")
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// parseModes maps kind names to filter mode bits. No names means every mode.
func parseModes(names []string) (filter.Modes, error) {
	if len(names) == 0 {
		return filter.AllModes, nil
	}
	var modes filter.Modes
	for _, name := range names {
		kind := ir.Kind(name)
		if !ir.ValidKinds[kind] {
			return 0, fmt.Errorf("unknown provider kind %q", name)
		}
		modes |= filter.ModesOf(kind)
	}
	return modes, nil
}
