package ir

// Kind names a choice provider.
type Kind string

const (
	// KindDefault draws decisions from a seeded pseudo-random source.
	KindDefault Kind = "default"

	// KindDFS enumerates every decision sequence depth-first.
	KindDFS Kind = "dfs"

	// KindDelta replays a recorded value/bound sequence.
	KindDelta Kind = "delta"
)

// ValidKinds lists the provider kinds accepted by configuration.
var ValidKinds = map[Kind]bool{
	KindDefault: true,
	KindDFS:     true,
	KindDelta:   true,
}

// Mode names a generation mode as it appears in run configuration.
type Mode string

const (
	ModeRandom     Mode = "random"
	ModeExhaustive Mode = "exhaustive"
	ModeDelta      Mode = "delta"
)

// Kind returns the provider kind that drives the mode.
func (m Mode) Kind() Kind {
	switch m {
	case ModeExhaustive:
		return KindDFS
	case ModeDelta:
		return KindDelta
	default:
		return KindDefault
	}
}

// Decision is one recorded choice: the value drawn at a position out of
// the half-open range [0, Bound).
type Decision struct {
	Position int `json:"position"`
	Value    int `json:"value"`
	Bound    int `json:"bound"`
}

// AttemptStatus is the outcome of a single generation attempt.
type AttemptStatus string

const (
	StatusOK           AttemptStatus = "ok"
	StatusBacktrack    AttemptStatus = "backtrack"
	StatusExceedDepth  AttemptStatus = "exceed_depth"
	StatusFilter       AttemptStatus = "filter"
	StatusInvalidDelta AttemptStatus = "invalid_delta"
	StatusFailed       AttemptStatus = "failed"
)

// Run is the persisted header of one generator invocation.
//
// Seed holds the uint64 generator seed reinterpreted as int64 so it fits
// an SQLite INTEGER column. Config is the hashed run configuration; its
// integer values decode as int64.
type Run struct {
	ID            string         `json:"id"`
	Mode          Mode           `json:"mode"`
	Seed          int64          `json:"seed"`
	MaxDepth      int            `json:"max_depth"`
	Config        map[string]any `json:"config"`
	ConfigHash    string         `json:"config_hash"`
	EngineVersion string         `json:"engine_version"`
	IRVersion     string         `json:"ir_version"`
	Seq           int64          `json:"seq"`
}

// Attempt is the persisted record of one attempt within a run.
type Attempt struct {
	RunID         string        `json:"run_id"`
	Seq           int64         `json:"seq"`
	Status        AttemptStatus `json:"status"`
	Signature     string        `json:"signature"`
	SignatureHash string        `json:"signature_hash"`
	Program       string        `json:"program,omitempty"`
	Decisions     []Decision    `json:"decisions,omitempty"`
}
