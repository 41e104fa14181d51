package engine

import (
	"context"
	"fmt"
)

// Replay and determinism
//
// A run is fully determined by its provider kind, seed, depth limit and
// grammar. Re-driving a fresh facade configured the same way must emit the
// same signatures in the same order; VerifyReplay checks exactly that
// against the signatures a stored run recorded.

// ReplayResult compares a re-driven run with a recorded one.
type ReplayResult struct {
	Expected      int    `json:"expected"`
	Actual        int    `json:"actual"`
	FirstMismatch int    `json:"first_mismatch"`
	Want          string `json:"want,omitempty"`
	Got           string `json:"got,omitempty"`
	Deterministic bool   `json:"deterministic"`
}

// VerifyReplay drives f with gen until len(expected) programs were emitted
// and compares their signatures with expected, in order. f must be freshly
// created and selected with the recorded configuration.
func VerifyReplay(ctx context.Context, f *Facade, gen Generator, expected []string, opts ...DriveOption) (ReplayResult, error) {
	res := ReplayResult{Expected: len(expected), FirstMismatch: -1}
	if len(expected) == 0 {
		res.Deterministic = true
		return res, nil
	}

	var got []string
	opts = append(opts, WithCount(len(expected)))
	if _, err := f.Drive(ctx, gen, func(o Outcome) error {
		got = append(got, o.Signature)
		return nil
	}, opts...); err != nil {
		return res, fmt.Errorf("replay: %w", err)
	}

	res.Actual = len(got)
	for i := range expected {
		if i >= len(got) || got[i] != expected[i] {
			res.FirstMismatch = i
			res.Want = expected[i]
			if i < len(got) {
				res.Got = got[i]
			}
			return res, nil
		}
	}
	res.Deterministic = len(got) == len(expected)
	return res, nil
}
