package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/choicegen/internal/engine"
	"github.com/roach88/choicegen/internal/ir"
)

//go:embed schema.cue
var schemaSource []byte

// Error codes for configuration failures.
const (
	ErrCodeReadFailed    = "E301" // Config file unreadable
	ErrCodeCompileFailed = "E302" // Config file is not valid CUE
	ErrCodeSchema        = "E303" // Config violates the #Run schema
	ErrCodeConflict      = "E304" // Options contradict each other
)

// LoadError is a configuration problem found before any generation attempt.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsLoadError returns true if err wraps a LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// Delta configures replay runs.
type Delta struct {
	Input       string `json:"input,omitempty"`
	Output      string `json:"output,omitempty"`
	SwitchPoint int    `json:"switch_point"`
	NoReduction bool   `json:"no_reduction"`
}

// Run is the complete configuration of one generator invocation.
type Run struct {
	Mode                ir.Mode `json:"mode"`
	Seed                *uint64 `json:"seed,omitempty"`
	MaxDepth            int     `json:"max_depth"`
	Programs            int     `json:"programs"`
	MaxAttempts         int     `json:"max_attempts"`
	RandomProbabilities bool    `json:"random_probabilities"`
	Probabilities       string  `json:"probabilities,omitempty"`
	DebugSequence       string  `json:"debug_sequence,omitempty"`
	Delta               Delta   `json:"delta"`
	DB                  string  `json:"db,omitempty"`
	MetricsOut          string  `json:"metrics_out,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Run {
	return Run{
		Mode:        ir.ModeRandom,
		MaxDepth:    engine.DefaultMaxDepth,
		Programs:    1,
		MaxAttempts: engine.DefaultMaxAttempts,
		Delta:       Delta{SwitchPoint: -1},
	}
}

// Load reads the CUE file at path and decodes it against the schema.
// Fields the file leaves out take their schema defaults.
func Load(path string) (Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Run{}, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading config: %v", err)}
	}
	return Parse(path, data)
}

// Parse decodes CUE source; filename is used in error positions.
func Parse(filename string, src []byte) (Run, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Run"))
	if err := schema.Err(); err != nil {
		return Run{}, &LoadError{Code: ErrCodeCompileFailed, Message: fmt.Sprintf("schema: %v", err)}
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return Run{}, cueLoadError(ErrCodeCompileFailed, err)
	}

	merged := schema.Unify(v)
	if err := merged.Validate(cue.Concrete(true)); err != nil {
		return Run{}, cueLoadError(ErrCodeSchema, err)
	}

	run := Default()
	if err := merged.Decode(&run); err != nil {
		return Run{}, &LoadError{Code: ErrCodeSchema, Message: fmt.Sprintf("decoding config: %v", err)}
	}
	return run, nil
}

func cueLoadError(code string, err error) *LoadError {
	le := &LoadError{Code: code, Message: cueerrors.Details(err, nil)}
	if positions := cueerrors.Positions(err); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}

// Validate reports option combinations that cannot run.
func (r Run) Validate() error {
	conflict := func(format string, args ...any) error {
		return &LoadError{Code: ErrCodeConflict, Message: fmt.Sprintf(format, args...)}
	}

	switch r.Mode {
	case ir.ModeRandom, ir.ModeExhaustive, ir.ModeDelta:
	default:
		return conflict("unknown mode %q", r.Mode)
	}
	if r.MaxDepth <= 0 {
		return conflict("max_depth must be positive, got %d", r.MaxDepth)
	}
	if r.Programs < 0 {
		return conflict("programs must not be negative, got %d", r.Programs)
	}
	if r.MaxAttempts <= 0 {
		return conflict("max_attempts must be positive, got %d", r.MaxAttempts)
	}
	if r.DebugSequence != "" && r.Mode != ir.ModeExhaustive {
		return conflict("debug_sequence requires mode exhaustive, got %s", r.Mode)
	}
	if r.Mode == ir.ModeDelta && r.Delta.Input == "" {
		return conflict("mode delta requires delta.input")
	}
	if r.Mode != ir.ModeDelta && (r.Delta.Input != "" || r.Delta.NoReduction) {
		return conflict("delta options require mode delta, got %s", r.Mode)
	}
	if r.Delta.SwitchPoint < -1 {
		return conflict("delta.switch_point must be -1 or a position, got %d", r.Delta.SwitchPoint)
	}
	return nil
}

// SeedOr returns the configured seed, or fallback when none is set.
func (r Run) SeedOr(fallback uint64) uint64 {
	if r.Seed != nil {
		return *r.Seed
	}
	return fallback
}

// HashInput returns the fields that determine a run's output, for
// ir.RunConfigHash. Paths are not included; their contents are.
func (r Run) HashInput(seed uint64) map[string]any {
	return map[string]any{
		"mode":                 r.Mode,
		"seed":                 strconv.FormatUint(seed, 10),
		"max_depth":            r.MaxDepth,
		"random_probabilities": r.RandomProbabilities,
		"debug_sequence":       r.DebugSequence,
		"no_reduction":         r.Delta.NoReduction,
		"switch_point":         r.Delta.SwitchPoint,
	}
}
