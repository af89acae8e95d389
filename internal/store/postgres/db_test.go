package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveStatementTimeoutMS_Default(t *testing.T) {
	resolved, err := resolveStatementTimeoutMS(Config{})
	require.NoError(t, err)
	assert.Equal(t, dbStatementTimeoutDefaultMS, resolved)
}

func TestResolveStatementTimeoutMS_ConfigOverride(t *testing.T) {
	resolved, err := resolveStatementTimeoutMS(Config{StatementTimeoutMS: 45000})
	require.NoError(t, err)
	assert.Equal(t, 45000, resolved)
}

func TestResolveStatementTimeoutMS_ConfigInvalidValue(t *testing.T) {
	_, err := resolveStatementTimeoutMS(Config{StatementTimeoutMS: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of allowed range")
}

func TestAppendStatementTimeout(t *testing.T) {
	assert.Equal(t,
		"postgres://u:p@h/db?options=-c%20statement_timeout%3D1000",
		appendStatementTimeout("postgres://u:p@h/db", 1000))
	assert.Equal(t,
		"postgres://u:p@h/db?sslmode=disable&options=-c%20statement_timeout%3D1000",
		appendStatementTimeout("postgres://u:p@h/db?sslmode=disable", 1000))
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	for _, name := range []string{
		"migrations/001_migration_check_runs.up.sql",
		"migrations/002_migration_check_findings.up.sql",
	} {
		data, err := migrationFiles.ReadFile(name)
		require.NoError(t, err, name)
		assert.Contains(t, string(data), "CREATE TABLE IF NOT EXISTS")
	}
}

func TestRunMigrations_AppliesPendingInOrder(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db := &DB{sqlDB}

	fsys := fstest.MapFS{
		"m/002_b.up.sql":   {Data: []byte("CREATE TABLE b (id INT)")},
		"m/001_a.up.sql":   {Data: []byte("CREATE TABLE a (id INT)")},
		"m/001_a.down.sql": {Data: []byte("DROP TABLE a")},
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)")).
		WithArgs("001_a.up.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)")).
		WithArgs("002_b.up.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("SET lock_timeout = '10s'")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE b (id INT)")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (version) VALUES ($1)")).
		WithArgs("002_b.up.sql").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, db.runMigrations(context.Background(), fsys, "m"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_ExecFailureStops(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db := &DB{sqlDB}

	fsys := fstest.MapFS{
		"m/001_a.up.sql": {Data: []byte("CREATE TABLE a (id INT)")},
		"m/002_b.up.sql": {Data: []byte("CREATE TABLE b (id INT)")},
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("001_a.up.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("SET lock_timeout")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE a (id INT)")).
		WillReturnError(errors.New("syntax error"))

	err = db.runMigrations(context.Background(), fsys, "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exec migration 001_a.up.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}
