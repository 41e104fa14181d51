package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/choicegen/internal/ir"
)

// ErrRunNotFound is returned when a run ID has no header row.
var ErrRunNotFound = errors.New("run not found")

// RunSummary is a run header with attempt counts.
type RunSummary struct {
	ir.Run
	Attempts int `json:"attempts"`
	Emitted  int `json:"emitted"`
}

// ReadRun retrieves a single run header by ID.
// Returns ErrRunNotFound (wrapped) if the run does not exist.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, mode, seed, max_depth, config, config_hash, engine_version, ir_version, seq
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return ir.Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns every run with its attempt counts.
// Results ordered by seq ASC, id ASC.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.mode, r.seed, r.max_depth, r.config, r.config_hash,
		       r.engine_version, r.ir_version, r.seq,
		       COUNT(a.seq),
		       COALESCE(SUM(CASE WHEN a.status = ? THEN 1 ELSE 0 END), 0)
		FROM runs r
		LEFT JOIN attempts a ON a.run_id = r.id
		GROUP BY r.id
		ORDER BY r.seq ASC, r.id COLLATE BINARY ASC
	`, string(ir.StatusOK))
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			sum     RunSummary
			mode    string
			cfgJSON string
		)
		if err := rows.Scan(
			&sum.ID, &mode, &sum.Seed, &sum.MaxDepth, &cfgJSON, &sum.ConfigHash,
			&sum.EngineVersion, &sum.IRVersion, &sum.Seq,
			&sum.Attempts, &sum.Emitted,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		sum.Mode = ir.Mode(mode)
		if sum.Config, err = unmarshalConfig(cfgJSON); err != nil {
			return nil, err
		}
		runs = append(runs, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	if runs == nil {
		runs = []RunSummary{}
	}
	return runs, nil
}

// NextRunSeq returns the seq to assign to a new run.
// Resumes the logical clock after the highest stored run.
func (s *Store) NextRunSeq(ctx context.Context) (int64, error) {
	var last int64
	if err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM runs
	`).Scan(&last); err != nil {
		return 0, fmt.Errorf("get last run seq: %w", err)
	}
	return last + 1, nil
}

// ReadAttempts returns the attempts of a run without their decisions,
// ordered by seq. A non-empty status restricts the result to that status.
func (s *Store) ReadAttempts(ctx context.Context, runID string, status ir.AttemptStatus) ([]ir.Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, status, signature, signature_hash, program
		FROM attempts
		WHERE run_id = ? AND (? = '' OR status = ?)
		ORDER BY seq ASC
	`, runID, string(status), string(status))
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []ir.Attempt
	for rows.Next() {
		var (
			att ir.Attempt
			st  string
		)
		if err := rows.Scan(&att.RunID, &att.Seq, &st, &att.Signature, &att.SignatureHash, &att.Program); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		att.Status = ir.AttemptStatus(st)
		attempts = append(attempts, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}

	if attempts == nil {
		attempts = []ir.Attempt{}
	}
	return attempts, nil
}

// ReadDecisions returns the recorded decisions of one attempt in position order.
func (s *Store) ReadDecisions(ctx context.Context, runID string, seq int64) ([]ir.Decision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, value, bound
		FROM decisions
		WHERE run_id = ? AND attempt_seq = ?
		ORDER BY position ASC
	`, runID, seq)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var ds []ir.Decision
	for rows.Next() {
		var d ir.Decision
		if err := rows.Scan(&d.Position, &d.Value, &d.Bound); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		ds = append(ds, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}

	if ds == nil {
		ds = []ir.Decision{}
	}
	return ds, nil
}

// CountDistinctSignatures counts the distinct signatures a run emitted.
func (s *Store) CountDistinctSignatures(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT signature_hash)
		FROM attempts
		WHERE run_id = ? AND status = ?
	`, runID, string(ir.StatusOK)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count signatures: %w", err)
	}
	return n, nil
}

func scanRun(row *sql.Row) (ir.Run, error) {
	var (
		run     ir.Run
		mode    string
		cfgJSON string
	)
	if err := row.Scan(
		&run.ID, &mode, &run.Seed, &run.MaxDepth, &cfgJSON, &run.ConfigHash,
		&run.EngineVersion, &run.IRVersion, &run.Seq,
	); err != nil {
		return ir.Run{}, err
	}
	run.Mode = ir.Mode(mode)

	cfg, err := unmarshalConfig(cfgJSON)
	if err != nil {
		return ir.Run{}, err
	}
	run.Config = cfg
	return run, nil
}
