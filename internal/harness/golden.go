package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/choicegen/internal/ir"
)

// Snapshot captures what a scenario run emitted, for golden comparison.
type Snapshot struct {
	ScenarioName string   `json:"scenario_name"`
	Mode         ir.Mode  `json:"mode"`
	Signatures   []string `json:"signatures"`
	Attempts     int      `json:"attempts"`
	Emitted      int      `json:"emitted"`
	Backtracks   int      `json:"backtracks"`
}

// NewSnapshot builds the snapshot of a scenario's result.
func NewSnapshot(name string, mode ir.Mode, result *Result) Snapshot {
	return Snapshot{
		ScenarioName: name,
		Mode:         mode,
		Signatures:   result.Signatures,
		Attempts:     result.Stats.Attempts,
		Emitted:      result.Stats.Emitted,
		Backtracks:   result.Stats.Backtracks,
	}
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s Snapshot) MarshalCanonical() ([]byte, error) {
	sigs := s.Signatures
	if sigs == nil {
		sigs = []string{}
	}
	return ir.MarshalCanonical(map[string]any{
		"scenario_name": s.ScenarioName,
		"mode":          s.Mode,
		"signatures":    sigs,
		"attempts":      s.Attempts,
		"emitted":       s.Emitted,
		"backtracks":    s.Backtracks,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, scenario.Mode, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, mode ir.Mode, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(name, mode, result).MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
