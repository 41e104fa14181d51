package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/choicegen/internal/filter"
	"github.com/roach88/choicegen/internal/ir"
)

// uptoGen makes one ChooseUpto per bound, in order.
func uptoGen(bounds ...int) Generator {
	return func(at *Attempt) (string, error) {
		for _, n := range bounds {
			if _, err := at.ChooseUpto(n, nil, ""); err != nil {
				return "", err
			}
		}
		return "", nil
	}
}

// filteredGen makes n decisions out of bound, each filtered by f.
func filteredGen(n, bound int, f filter.Filter) Generator {
	return func(at *Attempt) (string, error) {
		for range n {
			if _, err := at.ChooseUpto(bound, f, "x"); err != nil {
				return "", err
			}
		}
		return "", nil
	}
}

func newFacade(t *testing.T, kind ir.Kind, seed uint64, opts ...Option) *Facade {
	t.Helper()
	f := New(opts...)
	require.NoError(t, f.Select(kind, seed))
	return f
}

// signatures drives f to completion and returns the emitted signatures.
func signatures(t *testing.T, f *Facade, gen Generator, opts ...DriveOption) ([]string, Stats) {
	t.Helper()
	var sigs []string
	stats, err := f.Drive(context.Background(), gen, func(o Outcome) error {
		sigs = append(sigs, o.Signature)
		return nil
	}, opts...)
	require.NoError(t, err)
	return sigs, stats
}
