package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mendworks/mend/internal/pipeline"
)

// RunSummary is one persisted pipeline run.
type RunSummary struct {
	ID              string
	TargetDir       string
	FinalState      string
	Iterations      int
	HealingAttempts int
	IssueCount      int
	FixCount        int
	ErrorCount      int
	StartedAt       time.Time
	EndedAt         time.Time
}

// SaveRun persists the final context of a run, including its fix audit
// trail, in one transaction.
func (db *DB) SaveRun(pc *pipeline.Context) error {
	return db.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT OR REPLACE INTO runs
				(id, target_dir, final_state, iterations, healing_attempts,
				 issue_count, fix_count, error_count, started_at, ended_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, pc.RunID, pc.TargetDir, string(pc.State), pc.Iteration, pc.HealingAttempts,
			len(pc.Issues), len(pc.AppliedFixes), len(pc.ErrorLog),
			formatTime(pc.StartedAt), formatTime(pc.EndedAt))
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for _, fix := range pc.AppliedFixes {
			_, err := tx.Exec(`
				INSERT INTO fixes (run_id, file, summary, iteration, healing, applied_at)
				VALUES (?, ?, ?, ?, ?, ?)
			`, pc.RunID, fix.File, fix.Summary, fix.Iteration, fix.Healing, formatTime(fix.AppliedAt))
			if err != nil {
				return fmt.Errorf("insert fix: %w", err)
			}
		}
		return nil
	})
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT id, target_dir, final_state, iterations, healing_attempts,
		       issue_count, fix_count, error_count, started_at, ended_at
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var started, ended sql.NullString
		if err := rows.Scan(&r.ID, &r.TargetDir, &r.FinalState, &r.Iterations,
			&r.HealingAttempts, &r.IssueCount, &r.FixCount, &r.ErrorCount,
			&started, &ended); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if started.Valid {
			r.StartedAt, _ = parseTime(started.String)
		}
		if ended.Valid {
			r.EndedAt, _ = parseTime(ended.String)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunFixes returns the fix audit trail for one run, in application order.
func (db *DB) RunFixes(runID string) ([]FixRow, error) {
	rows, err := db.Query(`
		SELECT file, summary, iteration, healing, applied_at
		FROM fixes WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list fixes: %w", err)
	}
	defer rows.Close()

	var fixes []FixRow
	for rows.Next() {
		var f FixRow
		var applied string
		if err := rows.Scan(&f.File, &f.Summary, &f.Iteration, &f.Healing, &applied); err != nil {
			return nil, fmt.Errorf("scan fix: %w", err)
		}
		f.AppliedAt, _ = parseTime(applied)
		fixes = append(fixes, f)
	}
	return fixes, rows.Err()
}

// FixRow is one persisted fix record.
type FixRow struct {
	File      string
	Summary   string
	Iteration int
	Healing   bool
	AppliedAt time.Time
}
