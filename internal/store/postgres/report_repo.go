package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/domain/model"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/invariant"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/metrics"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/migration"
)

const findingColumns = 9

// ReportRepo persists check runs and their findings.
type ReportRepo struct {
	db *sql.DB
}

func NewReportRepo(db *DB) *ReportRepo {
	return &ReportRepo{db: db.DB}
}

// SaveRun writes the run and every finding in one transaction.
func (r *ReportRepo) SaveRun(ctx context.Context, res *migration.Result) (err error) {
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.ReportsPersistedTotal.WithLabelValues(status).Inc()
	}()

	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin report tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = insertRun(ctx, tx, res); err != nil {
		return fmt.Errorf("insert run %s: %w", res.RunID, err)
	}

	const batchSize = 500
	for i := 0; i < len(res.Findings); i += batchSize {
		end := i + batchSize
		if end > len(res.Findings) {
			end = len(res.Findings)
		}
		if err = insertFindings(ctx, tx, res.RunID, i, res.Findings[i:end]); err != nil {
			return fmt.Errorf("insert findings for run %s: %w", res.RunID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit report tx: %w", err)
	}
	return nil
}

func insertRun(ctx context.Context, tx *sql.Tx, res *migration.Result) error {
	disabled := make([]string, len(res.Disabled))
	for i, c := range res.Disabled {
		disabled[i] = string(c)
	}

	var before, after, coretime sql.NullInt64
	if res.Before != nil {
		before = blockNumber(res.Before.At)
	}
	if res.After != nil {
		after = blockNumber(res.After.At)
	}
	if res.Coretime != nil {
		coretime = blockNumber(res.Coretime.At)
	}

	var codeHash sql.NullString
	if res.Upgrade != nil {
		codeHash = sql.NullString{String: res.Upgrade.CodeHash, Valid: true}
	}

	var fatalClass, fatalReason, fatalError sql.NullString
	if res.Fatal != nil {
		fatalClass = sql.NullString{String: string(res.Fatal.Class), Valid: true}
		fatalReason = sql.NullString{String: res.Fatal.Reason, Valid: true}
		fatalError = sql.NullString{String: res.Fatal.Err.Error(), Valid: true}
	}

	_, err := tx.ExecContext(ctx, `INSERT INTO migration_check_runs
		(run_id, runtime_path, started_at, finished_at, outcome, exit_code, phase,
		 relay_block_before, relay_block_after, coretime_block, code_hash, poll_attempts,
		 disabled_checks, fatal_class, fatal_reason, fatal_error)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		res.RunID, res.RuntimePath, res.StartedAt, res.FinishedAt,
		string(res.Outcome()), res.ExitCode(), string(res.Phase),
		before, after, coretime, codeHash, res.PollAttempts,
		pq.Array(disabled), fatalClass, fatalReason, fatalError,
	)
	return err
}

func insertFindings(ctx context.Context, tx *sql.Tx, runID string, offset int, findings invariant.Findings) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO migration_check_findings
		(run_id, seq, check_name, kind, severity, message, expected, observed, para_id)
		VALUES `)

	args := make([]any, 0, len(findings)*findingColumns)
	for i, f := range findings {
		if i > 0 {
			sb.WriteString(",")
		}
		base := i * findingColumns
		sb.WriteString("(")
		for c := 1; c <= findingColumns; c++ {
			if c > 1 {
				sb.WriteString(",")
			}
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(base + c))
		}
		sb.WriteString(")")

		var paraID sql.NullInt64
		if f.ParaID != nil {
			paraID = sql.NullInt64{Int64: int64(*f.ParaID), Valid: true}
		}
		args = append(args,
			runID, offset+i, string(f.Check), string(f.Kind), string(f.Severity),
			f.Message, f.Expected, f.Observed, paraID)
	}

	_, err := tx.ExecContext(ctx, sb.String(), args...)
	return err
}

func blockNumber(ref model.BlockRef) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(ref.Number), Valid: true}
}
