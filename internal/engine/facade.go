package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/roach88/choicegen/internal/ir"
	"github.com/roach88/choicegen/internal/sequence"
)

// DefaultMaxDepth is the exhaustive depth limit used when none is configured.
const DefaultMaxDepth = 16

// switchPointSalt keeps the switch point draw independent of the random
// provider's first draw.
const switchPointSalt = 0x5eed5eed

// Observer receives per-attempt outcomes. Implemented by metrics.Metrics.
type Observer interface {
	ObserveAttempt(kind ir.Kind, status ir.AttemptStatus, decisions int)
	ObserveHandoff()
}

type nopObserver struct{}

func (nopObserver) ObserveAttempt(ir.Kind, ir.AttemptStatus, int) {}
func (nopObserver) ObserveHandoff()                               {}

// Facade owns the choice providers of one run and routes every decision to
// the active one.
//
// Providers are created lazily on first selection and live for the rest of
// the run; re-selecting a provider reactivates the existing instance with
// its state intact. The facade is not safe for concurrent use: a run is a
// single-threaded sequence of attempts.
type Facade struct {
	seed        uint64
	maxDepth    int
	debug       []int
	deltaInput  *sequence.Delta
	noReduction bool
	switchPoint int
	logger      *slog.Logger
	observer    Observer

	def   *DefaultProvider
	dfs   *DFSProvider
	delta *DeltaProvider

	primary ir.Kind
	active  Provider
	attempt int64
}

// Option configures a Facade.
type Option func(*Facade)

// WithMaxDepth sets the exhaustive depth limit.
//
// Default: 16 (DefaultMaxDepth)
func WithMaxDepth(maxDepth int) Option {
	return func(f *Facade) {
		f.maxDepth = maxDepth
	}
}

// WithDebugSequence makes the exhaustive provider replay seq by position.
func WithDebugSequence(seq []int) Option {
	return func(f *Facade) {
		f.debug = seq
	}
}

// WithDeltaInput supplies the recorded sequence for the replay provider.
func WithDeltaInput(in *sequence.Delta) Option {
	return func(f *Facade) {
		f.deltaInput = in
	}
}

// WithNoDeltaReduction disables the hand-off to the random provider, so the
// replay provider serves the whole attempt.
func WithNoDeltaReduction() Option {
	return func(f *Facade) {
		f.noReduction = true
	}
}

// WithSwitchPoint fixes the replay depth of the hand-off instead of drawing
// it. A negative point restores the random draw.
func WithSwitchPoint(point int) Option {
	return func(f *Facade) {
		f.switchPoint = point
	}
}

// WithLogger sets the facade's logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(f *Facade) {
		f.logger = l
	}
}

// WithObserver registers an attempt observer.
func WithObserver(o Observer) Option {
	return func(f *Facade) {
		if o != nil {
			f.observer = o
		}
	}
}

// New creates a Facade with no active provider. Call Select before Begin.
func New(opts ...Option) *Facade {
	f := &Facade{
		maxDepth:    DefaultMaxDepth,
		switchPoint: -1,
		logger:      slog.Default(),
		observer:    nopObserver{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Select makes kind the run's provider, creating it with seed on first use.
// An already created provider is reactivated as is; seed only applies to
// providers created by this call or later swaps.
func (f *Facade) Select(kind ir.Kind, seed uint64) error {
	if f.active == nil {
		f.seed = seed
	}
	p, err := f.provider(kind)
	if err != nil {
		return err
	}
	f.primary = kind
	f.active = p
	return nil
}

// Swap activates kind, creating it if needed, and returns the previously
// active kind so the caller can swap back.
func (f *Facade) Swap(kind ir.Kind) (ir.Kind, error) {
	if f.active == nil {
		return "", &ConfigError{Kind: kind, Message: "swap before select"}
	}
	p, err := f.provider(kind)
	if err != nil {
		return "", err
	}
	old := f.active.Kind()
	f.active = p
	return old, nil
}

func (f *Facade) provider(kind ir.Kind) (Provider, error) {
	switch kind {
	case ir.KindDefault:
		if f.def == nil {
			f.def = NewDefaultProvider(f.seed, f.recorderFor())
		}
		return f.def, nil

	case ir.KindDFS:
		if f.dfs == nil {
			if f.maxDepth <= 0 && f.debug == nil {
				return nil, &ConfigError{Kind: kind, Message: fmt.Sprintf("max depth must be positive, got %d", f.maxDepth)}
			}
			depth := f.maxDepth
			if f.debug != nil && len(f.debug) > depth {
				depth = len(f.debug)
			}
			f.dfs = NewDFSProvider(f.seed, depth, f.debug, f.logger)
		}
		return f.dfs, nil

	case ir.KindDelta:
		if f.delta == nil {
			if f.deltaInput == nil {
				return nil, &ConfigError{Kind: kind, Message: "no input sequence"}
			}
			if f.deltaInput.InputLen() == 0 {
				return nil, &ConfigError{Kind: kind, Message: "input sequence is empty"}
			}
			// The switch point is a pure draw: it never appears in any
			// recorded sequence.
			point := f.switchPoint
			if point < 0 {
				point = draw(NewSource(f.seed^switchPointSalt), f.deltaInput.InputLen())
			}
			f.delta = NewDeltaProvider(f.deltaInput, point, f.noReduction)
			f.delta.handoff = f.handoff
			f.logger.Debug("delta provider ready", "switch_point", point, "length", f.deltaInput.InputLen())
		}
		return f.delta, nil
	}
	return nil, &ConfigError{Kind: kind, Message: "unknown provider kind"}
}

// recorderFor picks the random provider's recorder: in delta runs it keeps
// value/bound pairs so its suffix can be merged into the delta output.
func (f *Facade) recorderFor() sequence.Sequence {
	if f.deltaInput != nil {
		return sequence.NewDelta()
	}
	return sequence.NewLinear()
}

func (f *Facade) handoff(depth int) {
	if _, err := f.Swap(ir.KindDefault); err != nil {
		f.logger.Error("delta hand-off failed", "error", err)
		return
	}
	f.def.SetDepth(depth)
	f.observer.ObserveHandoff()
	f.logger.Info("switched to random provider", "depth", depth)
}

// withDefault runs fn against the random provider, temporarily activating
// it when another provider is active.
func (f *Facade) withDefault(fn func(d *DefaultProvider)) (err error) {
	if f.active != nil && f.active.Kind() == ir.KindDefault {
		fn(f.def)
		return nil
	}
	old, err := f.Swap(ir.KindDefault)
	if err != nil {
		return err
	}
	defer func() {
		if _, swapErr := f.Swap(old); swapErr != nil {
			err = errors.Join(err, fmt.Errorf("restore %s provider: %w", old, swapErr))
		}
	}()
	fn(f.def)
	return nil
}

// PureUpto draws a value in [0, n) from the random provider outside any
// attempt. Run setup uses it, e.g. to randomize the probability table, so
// the draw shifts the random stream but is never recorded.
func (f *Facade) PureUpto(n int) (int, error) {
	if n < 1 {
		return 0, &ConfigError{Kind: ir.KindDefault, Message: fmt.Sprintf("pure upto %d: bound must be at least 1", n)}
	}
	var v int
	err := f.withDefault(func(d *DefaultProvider) { v = d.drawUpto(n) })
	return v, err
}

// Active returns the active provider, nil before Select.
func (f *Facade) Active() Provider { return f.active }

// Kind returns the active provider's kind.
func (f *Facade) Kind() ir.Kind {
	if f.active == nil {
		return ""
	}
	return f.active.Kind()
}

// Primary returns the kind chosen by the last Select.
func (f *Facade) Primary() ir.Kind { return f.primary }

// MaxDepth returns the exhaustive depth limit.
func (f *Facade) MaxDepth() int { return f.maxDepth }

// Begin starts a new attempt with an empty error slot.
func (f *Facade) Begin() *Attempt {
	f.attempt++
	return &Attempt{f: f, seq: f.attempt}
}

// Done reports whether exhaustive enumeration has finished. It is always
// false for the other providers.
func (f *Facade) Done() bool {
	if ex, ok := f.primaryProvider().(Exhaustive); ok {
		return ex.Done()
	}
	return false
}

// ResetAttempt prepares every provider for the next attempt and restores
// the primary provider as active.
func (f *Facade) ResetAttempt() {
	if f.def != nil {
		f.def.Reset()
	}
	if f.dfs != nil {
		f.dfs.Reset()
	}
	if f.delta != nil {
		f.delta.Reset()
	}
	if pp := f.primaryProvider(); pp != nil {
		f.active = pp
	}
}

func (f *Facade) primaryProvider() Provider {
	switch f.primary {
	case ir.KindDefault:
		if f.def != nil {
			return f.def
		}
	case ir.KindDFS:
		if f.dfs != nil {
			return f.dfs
		}
	case ir.KindDelta:
		if f.delta != nil {
			return f.delta
		}
	}
	return nil
}

// Decisions returns the decisions of the current attempt in position order.
// For replay runs the replayed prefix and the random suffix are merged.
func (f *Facade) Decisions() []ir.Decision {
	switch f.primary {
	case ir.KindDelta:
		var def sequence.Sequence
		if f.def != nil {
			def = f.def.Sequence()
		}
		if f.delta == nil {
			return nil
		}
		return sequence.Merge(f.delta.Sequence(), def)
	default:
		if pp := f.primaryProvider(); pp != nil {
			return pp.Sequence().Decisions()
		}
	}
	return nil
}

// Signature renders the current attempt's decisions as "v0_v1_...".
func (f *Facade) Signature() string {
	ds := f.Decisions()
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = strconv.Itoa(d.Value)
	}
	return strings.Join(parts, string(rune(sequence.LinearSep)))
}

// Trace returns the active provider's decision log.
func (f *Facade) Trace() string {
	if f.active == nil {
		return ""
	}
	return f.active.Trace()
}

// WriteDeltaOutput writes the current attempt's decisions in the delta line
// format, suitable as the input of a later replay run.
func (f *Facade) WriteDeltaOutput(w io.Writer) error {
	_, err := sequence.WriteDelta(w, f.Decisions())
	return err
}

// WriteStatistics writes the reduction banner for replay runs. It writes
// nothing for other runs.
func (f *Facade) WriteStatistics(w io.Writer) error {
	if f.primary != ir.KindDelta || f.delta == nil {
		return nil
	}
	return f.delta.WriteStatistics(w)
}

// Delta returns the replay provider, nil if it was never selected.
func (f *Facade) Delta() *DeltaProvider { return f.delta }

// DFS returns the exhaustive provider, nil if it was never selected.
func (f *Facade) DFS() *DFSProvider { return f.dfs }

// Default returns the random provider, nil if it was never selected.
func (f *Facade) Default() *DefaultProvider { return f.def }
