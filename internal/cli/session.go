package cli

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/choicegen/internal/config"
	"github.com/roach88/choicegen/internal/engine"
	"github.com/roach88/choicegen/internal/grammar"
	"github.com/roach88/choicegen/internal/ir"
	"github.com/roach88/choicegen/internal/prob"
	"github.com/roach88/choicegen/internal/sequence"
)

// Error codes for generation commands. Configuration errors carry the
// config package codes (E301-E304).
const (
	ErrCodeProbabilities = "E305" // Probability file rejected
	ErrCodeDeltaInput    = "E306" // Replay input unreadable or malformed
	ErrCodeGeneration    = "E401" // Fatal decision error during a run
	ErrCodeStore         = "E402" // Run log unavailable
	ErrCodeDeterminism   = "E_DETERMINISM"
)

// runFlags are the generation flags shared by generate, enumerate and delta.
// A flag overrides the config file only when it was set explicitly.
type runFlags struct {
	Seed        uint64
	MaxDepth    int
	Count       int
	MaxAttempts int
	RandomProbs bool
	Probs       string
	Database    string
	MetricsOut  string
	DeltaOut    string

	// Mode-specific; only enumerate and delta bind these.
	DebugSequence string
	DeltaIn       string
	NoReduction   bool
	SwitchPoint   int
}

func bindRunFlags(cmd *cobra.Command, f *runFlags, countName, countHelp string, countDefault int) {
	cmd.Flags().Uint64Var(&f.Seed, "seed", 0, "random seed (default: derived from the clock)")
	cmd.Flags().IntVar(&f.Count, countName, countDefault, countHelp)
	cmd.Flags().IntVar(&f.MaxDepth, "max-depth", engine.DefaultMaxDepth, "exhaustive decision depth limit")
	cmd.Flags().IntVar(&f.MaxAttempts, "max-attempts", engine.DefaultMaxAttempts, "attempt quota for the run")
	cmd.Flags().BoolVar(&f.RandomProbs, "random-probabilities", false, "randomize the probability table from the seed")
	cmd.Flags().StringVar(&f.Probs, "probabilities", "", "probability file overriding the defaults")
	cmd.Flags().StringVar(&f.Database, "db", "", "SQLite run log to record attempts in")
	cmd.Flags().StringVar(&f.MetricsOut, "metrics-out", "", "write Prometheus metrics to this textfile")
	cmd.Flags().StringVar(&f.DeltaOut, "delta-output", "", "write the decisions of the last program as a replay input")
}

// resolveConfig merges the config file (if any) with explicitly set flags
// and validates the result.
func resolveConfig(root *RootOptions, cmd *cobra.Command, mode ir.Mode, f *runFlags, countName string) (config.Run, error) {
	cfg := config.Default()
	if root.Config != "" {
		loaded, err := config.Load(root.Config)
		if err != nil {
			return config.Run{}, err
		}
		cfg = loaded
	}
	cfg.Mode = mode

	changed := cmd.Flags().Changed
	if changed("seed") {
		seed := f.Seed
		cfg.Seed = &seed
	}
	if changed("max-depth") {
		cfg.MaxDepth = f.MaxDepth
	}
	if changed(countName) || root.Config == "" {
		cfg.Programs = f.Count
	}
	if changed("max-attempts") {
		cfg.MaxAttempts = f.MaxAttempts
	}
	if changed("random-probabilities") {
		cfg.RandomProbabilities = f.RandomProbs
	}
	if changed("probabilities") {
		cfg.Probabilities = f.Probs
	}
	if changed("db") {
		cfg.DB = f.Database
	}
	if changed("metrics-out") {
		cfg.MetricsOut = f.MetricsOut
	}
	if changed("delta-output") {
		cfg.Delta.Output = f.DeltaOut
	}
	if changed("debug-sequence") {
		cfg.DebugSequence = f.DebugSequence
	}
	if changed("input") {
		cfg.Delta.Input = f.DeltaIn
	}
	if changed("no-reduction") {
		cfg.Delta.NoReduction = f.NoReduction
	}
	if changed("switch-point") {
		cfg.Delta.SwitchPoint = f.SwitchPoint
	}

	if err := cfg.Validate(); err != nil {
		return config.Run{}, err
	}
	return cfg, nil
}

// plan is a fully resolved run: configuration, seed and the contents of
// every input file. Stored runs keep the file contents, so a plan can be
// rebuilt from the run log alone.
type plan struct {
	cfg       config.Run
	seed      uint64
	probsText string
	deltaText string
}

// newPlan reads the files named by cfg. A missing seed is taken from the clock.
func newPlan(cfg config.Run) (plan, error) {
	p := plan{cfg: cfg, seed: cfg.SeedOr(uint64(time.Now().UnixNano()))}

	if cfg.Probabilities != "" {
		data, err := os.ReadFile(cfg.Probabilities)
		if err != nil {
			return plan{}, WrapExitError(ExitCommandError, "failed to read probabilities", err)
		}
		p.probsText = string(data)
	}
	if cfg.Mode == ir.ModeDelta {
		data, err := os.ReadFile(cfg.Delta.Input)
		if err != nil {
			return plan{}, WrapExitError(ExitCommandError, "failed to read delta input", err)
		}
		p.deltaText = string(data)
	}
	return p, nil
}

// planFromRun rebuilds the plan of a stored run from its recorded config.
func planFromRun(run ir.Run) plan {
	cfg := config.Default()
	cfg.Mode = run.Mode
	cfg.MaxDepth = run.MaxDepth

	str := func(key string) string {
		s, _ := run.Config[key].(string)
		return s
	}
	num := func(key string, def int) int {
		if n, ok := run.Config[key].(int64); ok {
			return int(n)
		}
		return def
	}
	cfg.RandomProbabilities, _ = run.Config["random_probabilities"].(bool)
	cfg.DebugSequence = str("debug_sequence")
	cfg.Delta.NoReduction, _ = run.Config["no_reduction"].(bool)
	cfg.Delta.SwitchPoint = num("switch_point", -1)

	seed := uint64(run.Seed)
	cfg.Seed = &seed
	return plan{cfg: cfg, seed: seed, probsText: str("probabilities"), deltaText: str("delta_input")}
}

// hashInput is the run config recorded with a stored run.
func (p plan) hashInput() map[string]any {
	m := p.cfg.HashInput(p.seed)
	if p.probsText != "" {
		m["probabilities"] = p.probsText
	}
	if p.deltaText != "" {
		m["delta_input"] = p.deltaText
	}
	return m
}

// generator is everything a run needs to make attempts.
type generator struct {
	facade  *engine.Facade
	probs   *prob.Table
	grammar *grammar.Grammar
}

// build creates the facade, selects the run's provider and initializes the
// probability table from it.
func (p plan) build(logger *slog.Logger, observer engine.Observer) (*generator, error) {
	opts := []engine.Option{
		engine.WithMaxDepth(p.cfg.MaxDepth),
		engine.WithLogger(logger),
	}
	if observer != nil {
		opts = append(opts, engine.WithObserver(observer))
	}
	if p.cfg.DebugSequence != "" {
		seq, err := sequence.ParseDebug(p.cfg.DebugSequence)
		if err != nil {
			return nil, &CodedError{Code: config.ErrCodeConflict, Err: fmt.Errorf("debug sequence: %w", err)}
		}
		opts = append(opts, engine.WithDebugSequence(seq))
	}
	if p.cfg.Mode == ir.ModeDelta {
		pairs, err := sequence.ReadDelta(strings.NewReader(p.deltaText))
		if err != nil {
			return nil, &CodedError{Code: ErrCodeDeltaInput, Err: fmt.Errorf("delta input: %w", err)}
		}
		opts = append(opts, engine.WithDeltaInput(sequence.NewDeltaInput(pairs)))
		if p.cfg.Delta.NoReduction {
			opts = append(opts, engine.WithNoDeltaReduction())
		}
		if p.cfg.Delta.SwitchPoint >= 0 {
			opts = append(opts, engine.WithSwitchPoint(p.cfg.Delta.SwitchPoint))
		}
	}

	f := engine.New(opts...)
	if err := f.Select(p.cfg.Mode.Kind(), p.seed); err != nil {
		return nil, &CodedError{Code: config.ErrCodeConflict, Err: err}
	}

	// A probability file overrides the initialized weights entry by entry.
	probs := prob.Defaults()
	if err := probs.Initialize(f.PureUpto, p.cfg.RandomProbabilities); err != nil {
		return nil, &CodedError{Code: ErrCodeProbabilities, Err: err}
	}
	if p.probsText != "" {
		if err := probs.Parse(strings.NewReader(p.probsText)); err != nil {
			return nil, &CodedError{Code: ErrCodeProbabilities, Err: err}
		}
	}

	return &generator{facade: f, probs: probs, grammar: grammar.New(probs)}, nil
}

// CodedError attaches a CLI error code to an error that has none.
type CodedError struct {
	Code string
	Err  error
}

func (e *CodedError) Error() string { return e.Err.Error() }

func (e *CodedError) Unwrap() error { return e.Err }

// errorCode picks the CLI error code for err.
func errorCode(err error) string {
	var le *config.LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code
	}
	var pe *prob.ConfigError
	if errors.As(err, &pe) {
		return ErrCodeProbabilities
	}
	return ErrCodeGeneration
}

// fail reports err in the configured format and returns the matching
// ExitError, marked as reported once the message was written.
func fail(root *RootOptions, cmd *cobra.Command, exitCode int, message string, err error) error {
	exitErr := WrapExitError(exitCode, message, err)
	out := newOutput(root, cmd)
	if writeErr := out.Error(errorCode(err), fmt.Sprintf("%s: %v", message, err), errorDetails(err)); writeErr != nil {
		slog.Warn("error report not written", "error", writeErr)
		return exitErr
	}
	exitErr.Reported = true
	return exitErr
}

// errorDetails exposes where a decision failed, or nil for other errors.
func errorDetails(err error) map[string]any {
	var ge *engine.GenError
	if !errors.As(err, &ge) {
		return nil
	}
	details := map[string]any{
		"provider": ge.Kind,
		"reason":   ge.Code,
	}
	if ge.Position >= 0 {
		details["position"] = ge.Position
	}
	if ge.Bound > 0 {
		details["bound"] = ge.Bound
	}
	return details
}

// writeFileAtomic replaces path with data.
func writeFileAtomic(path string, data *bytes.Buffer) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
