package store

import (
	"context"
	"fmt"
	"io"

	"github.com/roach88/choicegen/internal/ir"
	"github.com/roach88/choicegen/internal/sequence"
)

// EmittedSignatures returns the signatures of a run's emitted attempts in
// emission order. A replay re-drives the run and compares against this list.
func (s *Store) EmittedSignatures(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT signature
		FROM attempts
		WHERE run_id = ? AND status = ?
		ORDER BY seq ASC
	`, runID, string(ir.StatusOK))
	if err != nil {
		return nil, fmt.Errorf("query signatures: %w", err)
	}
	defer rows.Close()

	sigs := []string{}
	for rows.Next() {
		var sig string
		if err := rows.Scan(&sig); err != nil {
			return nil, fmt.Errorf("scan signature: %w", err)
		}
		sigs = append(sigs, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signatures: %w", err)
	}
	return sigs, nil
}

// ExportDelta writes the decisions of one attempt in the delta line format,
// ready to be fed back as a replay input.
func (s *Store) ExportDelta(ctx context.Context, runID string, seq int64, w io.Writer) error {
	ds, err := s.ReadDecisions(ctx, runID, seq)
	if err != nil {
		return err
	}
	if len(ds) == 0 {
		return fmt.Errorf("export delta: run %s attempt %d has no decisions", runID, seq)
	}
	if _, err := sequence.WriteDelta(w, ds); err != nil {
		return fmt.Errorf("export delta: %w", err)
	}
	return nil
}
