package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/config"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/migration"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/report"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "RELAY_CHAIN_RPC", "CORETIME_CHAIN_RPC", "REPORT_FORMAT", "REPORT_DB_URL",
		"ALERT_SLACK_WEBHOOK_URL", "ALERT_WEBHOOK_URL", "TRACING_ENDPOINT", "PUSHGATEWAY_URL",
		"CHECKS_DISABLED", "LOG_LEVEL", "LOG_FORMAT", "RPC_TIMEOUT_SEC",
	} {
		t.Setenv(k, "")
	}
}

// closedPort returns a local address nothing listens on.
func closedPort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestRun_RequiresRuntimeArgument(t *testing.T) {
	clearEnv(t)
	for _, args := range [][]string{nil, {""}, {"a.wasm", "b.wasm"}} {
		var stdout, stderr bytes.Buffer
		code := run(context.Background(), args, &stdout, &stderr)

		assert.Equal(t, migration.ExitFatal, code, "args=%v", args)
		assert.Contains(t, stderr.String(), "usage: coretime-check <runtime.wasm>")
		assert.Empty(t, stdout.String())
	}
}

func TestRun_RequiresEndpoints(t *testing.T) {
	clearEnv(t)
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"runtime.wasm"}, &stdout, &stderr)

	assert.Equal(t, migration.ExitFatal, code)
	assert.Contains(t, stderr.String(), "RELAY_CHAIN_RPC is required")
}

func TestRun_UnknownDisabledCheck(t *testing.T) {
	clearEnv(t)
	t.Setenv("RELAY_CHAIN_RPC", "http://127.0.0.1:9944")
	t.Setenv("CORETIME_CHAIN_RPC", "http://127.0.0.1:9945")
	t.Setenv("CHECKS_DISABLED", "not_a_check")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"runtime.wasm"}, &stdout, &stderr)

	assert.Equal(t, migration.ExitFatal, code)
	assert.Contains(t, stderr.String(), `unknown check "not_a_check"`)
}

// With nothing listening the run aborts in the first phase but still prints
// a complete report.
func TestRun_UnreachableRelayReportsFatal(t *testing.T) {
	clearEnv(t)
	t.Setenv("RELAY_CHAIN_RPC", "http://"+closedPort(t))
	t.Setenv("CORETIME_CHAIN_RPC", "http://"+closedPort(t))
	t.Setenv("RPC_TIMEOUT_SEC", "2")
	t.Setenv("LOG_LEVEL", "error")
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"runtime.wasm"}, &stdout, &stderr)

	assert.Equal(t, migration.ExitFatal, code)
	out := stdout.String()
	assert.Contains(t, out, "phase=PRE_SNAPSHOT class=transport")
	assert.Contains(t, out, "Result: FATAL\n")
	assert.True(t, strings.HasSuffix(out, "DONE\n"))
}

func TestRun_UnreachableWebsocketFailsDial(t *testing.T) {
	clearEnv(t)
	t.Setenv("RELAY_CHAIN_RPC", "ws://"+closedPort(t))
	t.Setenv("CORETIME_CHAIN_RPC", "ws://"+closedPort(t))
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"runtime.wasm"}, &stdout, &stderr)

	assert.Equal(t, migration.ExitFatal, code)
	assert.Contains(t, stderr.String(), "failed to connect to relay chain")
	assert.Empty(t, stdout.String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestNewLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	newLogger(config.LogConfig{Level: "info", Format: "json"}, &buf).Info("hello", "k", "v")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
	assert.Contains(t, buf.String(), `"k":"v"`)

	buf.Reset()
	newLogger(config.LogConfig{Level: "warn", Format: "text"}, &buf).Info("dropped")
	assert.Empty(t, buf.String())
}

func TestBuildSinks(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{Report: config.ReportConfig{Format: "text"}}
	sinks, closeFn, err := buildSinks(context.Background(), cfg, io.Discard, logger)
	require.NoError(t, err)
	defer closeFn()
	require.Len(t, sinks, 1)
	assert.IsType(t, &report.Printer{}, sinks[0])

	cfg.Alert.SlackWebhookURL = "https://hooks.slack.example/T000"
	cfg.Alert.WebhookURL = "https://alerts.example/hook"
	sinks, _, err = buildSinks(context.Background(), cfg, io.Discard, logger)
	require.NoError(t, err)
	require.Len(t, sinks, 2)
	assert.IsType(t, report.AlertSink{}, sinks[1])

	cfg.Report.Format = "xml"
	_, _, err = buildSinks(context.Background(), cfg, io.Discard, logger)
	assert.Error(t, err)
}

func TestBuildSinks_UnreachableStore(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{Report: config.ReportConfig{
		Format: "text",
		DBURL:  fmt.Sprintf("postgres://u:p@%s/db?sslmode=disable&connect_timeout=2", closedPort(t)),
	}}

	_, _, err := buildSinks(context.Background(), cfg, io.Discard, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect report store")
}
