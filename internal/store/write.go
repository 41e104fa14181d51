package store

import (
	"context"
	"fmt"

	"github.com/roach88/choicegen/internal/ir"
)

// WriteRun inserts a run header.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) WriteRun(ctx context.Context, run ir.Run) error {
	cfgJSON, err := marshalConfig(run.Config)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, mode, seed, max_depth, config, config_hash, engine_version, ir_version, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		string(run.Mode),
		run.Seed,
		run.MaxDepth,
		cfgJSON,
		run.ConfigHash,
		run.EngineVersion,
		run.IRVersion,
		run.Seq,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteAttempt inserts an attempt and its decisions in one transaction.
//
// The attempt row claims (run_id, seq) via ON CONFLICT DO NOTHING. If the
// slot is already taken the decisions are not written again and inserted
// is false. The run referenced by RunID must exist (foreign key constraint).
func (s *Store) WriteAttempt(ctx context.Context, att ir.Attempt) (inserted bool, err error) {
	seqHash, err := ir.SequenceHash(att.Decisions)
	if err != nil {
		return false, fmt.Errorf("write attempt: %w", err)
	}
	sigHash := att.SignatureHash
	if sigHash == "" {
		sigHash = ir.SignatureHash(att.Signature)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write attempt: begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO attempts
		(run_id, seq, status, signature, signature_hash, sequence_hash, program)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`,
		att.RunID,
		att.Seq,
		string(att.Status),
		att.Signature,
		sigHash,
		seqHash,
		att.Program,
	)
	if err != nil {
		return false, fmt.Errorf("write attempt: insert attempt: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write attempt: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return false, nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO decisions (run_id, attempt_seq, position, value, bound)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return false, fmt.Errorf("write attempt: prepare decisions: %w", err)
	}
	defer stmt.Close()

	for _, d := range att.Decisions {
		if _, err := stmt.ExecContext(ctx, att.RunID, att.Seq, d.Position, d.Value, d.Bound); err != nil {
			return false, fmt.Errorf("write attempt: insert decision %d: %w", d.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write attempt: commit: %w", err)
	}
	return true, nil
}
