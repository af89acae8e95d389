//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/domain/model"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/invariant"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/migration"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/store/postgres"
)

func TestReportRepo_SaveRunRoundTrip(t *testing.T) {
	db := testDB(t)
	repo := postgres.NewReportRepo(db)
	ctx := context.Background()

	para := model.ParaID(2001)
	started := time.Now().UTC().Truncate(time.Microsecond)
	res := &migration.Result{
		RunID:       uuid.NewString(),
		RuntimePath: "kusama_runtime.wasm",
		StartedAt:   started,
		FinishedAt:  started.Add(2 * time.Second),
		Phase:       migration.PhaseReported,
		Before:      &model.LegacySnapshot{At: model.BlockRef{Number: 999_999, Hash: "0xpre"}},
		After:       &model.LegacySnapshot{At: model.BlockRef{Number: 1_000_002, Hash: "0xpost"}},
		Disabled:    []invariant.Check{invariant.NoUnexpectedPool},
		Findings: invariant.Findings{
			{Check: invariant.LeaseProjection, Kind: invariant.KindTimeSliceMismatch, Severity: invariant.SeveritySoft,
				Message: "coretime lease found but time slice does not match", Expected: "30240", Observed: "30160", ParaID: &para},
			{Check: invariant.CoreCountParity, Kind: invariant.KindCoreCountMismatch, Severity: invariant.SeverityHard,
				Message: "relay core count does not match coretime core count inbox", Expected: "5", Observed: "6"},
		},
	}

	require.NoError(t, repo.SaveRun(ctx, res))

	var (
		outcome  string
		exitCode int
		after    int64
		coretime *int64
		disabled pq.StringArray
	)
	require.NoError(t, db.QueryRowContext(ctx, `
		SELECT outcome, exit_code, relay_block_after, coretime_block, disabled_checks
		FROM migration_check_runs WHERE run_id = $1`, res.RunID,
	).Scan(&outcome, &exitCode, &after, &coretime, &disabled))

	assert.Equal(t, "FAIL", outcome)
	assert.Equal(t, 1, exitCode)
	assert.Equal(t, int64(1_000_002), after)
	assert.Nil(t, coretime)
	assert.Equal(t, pq.StringArray{"no_unexpected_pool"}, disabled)

	rows, err := db.QueryContext(ctx, `
		SELECT seq, check_name, severity, para_id
		FROM migration_check_findings WHERE run_id = $1 ORDER BY seq`, res.RunID)
	require.NoError(t, err)
	defer rows.Close()

	type row struct {
		seq      int
		check    string
		severity string
		paraID   *int64
	}
	var got []row
	for rows.Next() {
		var r row
		require.NoError(t, rows.Scan(&r.seq, &r.check, &r.severity, &r.paraID))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())
	require.Len(t, got, 2)
	assert.Equal(t, "lease_projection", got[0].check)
	require.NotNil(t, got[0].paraID)
	assert.Equal(t, int64(2001), *got[0].paraID)
	assert.Equal(t, "hard", got[1].severity)
	assert.Nil(t, got[1].paraID)
}

func TestReportRepo_DuplicateRunIsRejected(t *testing.T) {
	db := testDB(t)
	repo := postgres.NewReportRepo(db)
	ctx := context.Background()

	res := &migration.Result{
		RunID:       uuid.NewString(),
		RuntimePath: "kusama_runtime.wasm",
		StartedAt:   time.Now().UTC(),
		FinishedAt:  time.Now().UTC(),
		Phase:       migration.PhaseReported,
	}
	require.NoError(t, repo.SaveRun(ctx, res))
	require.Error(t, repo.SaveRun(ctx, res))

	var n int
	require.NoError(t, db.QueryRowContext(ctx,
		"SELECT count(*) FROM migration_check_runs WHERE run_id = $1", res.RunID).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.RunMigrations(context.Background()))

	var applied int
	require.NoError(t, db.QueryRowContext(context.Background(),
		"SELECT count(*) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, 2, applied)
}
