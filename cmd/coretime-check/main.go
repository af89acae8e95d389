// Command coretime-check upgrades a forked relay chain to a new runtime and
// verifies that the coretime migration moved leases, reservations and the
// core count onto the coretime chain intact.
//
// Usage:
//
//	RELAY_CHAIN_RPC=ws://127.0.0.1:8000 CORETIME_CHAIN_RPC=ws://127.0.0.1:8001 \
//		coretime-check kusama_runtime.compact.compressed.wasm
//
// Exit status is 0 when every check passed, 1 on hard findings and 2 when
// the run could not complete.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/alert"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/chain/coretime"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/chain/ratelimit"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/chain/relay"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/chain/substrate/rpc"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/config"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/domain/model"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/invariant"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/metrics"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/migration"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/report"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/store/postgres"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/tracing"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/upgrade"
)

const serviceName = "coretime-check"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 || args[0] == "" {
		fmt.Fprintf(stderr, "usage: %s <runtime.wasm>\n", serviceName)
		return migration.ExitFatal
	}
	runtimePath := args[0]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", serviceName, err)
		return migration.ExitFatal
	}

	logger := newLogger(cfg.Log, stderr)
	slog.SetDefault(logger)
	logger.Info("starting coretime-check",
		"runtime_path", runtimePath,
		"relay_rpc", cfg.Relay.RPCURL,
		"coretime_rpc", cfg.Coretime.RPCURL,
		"migration_timeout", cfg.Migration.Timeout,
		"poll_interval", cfg.Migration.PollInterval,
		"checks_disabled", cfg.Checks.Disabled,
	)

	shutdownTracing, err := tracing.Init(ctx, serviceName, cfg.Tracing.Endpoint, cfg.Tracing.Insecure, cfg.Tracing.SampleRatio)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		return migration.ExitFatal
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown error", "error", err)
		}
	}()

	relayClient, err := dialLedger(ctx, cfg, model.LedgerRelay, cfg.Relay.RPCURL, logger)
	if err != nil {
		logger.Error("failed to connect to relay chain", "error", err)
		return migration.ExitFatal
	}
	defer relayClient.Close()

	coretimeClient, err := dialLedger(ctx, cfg, model.LedgerCoretime, cfg.Coretime.RPCURL, logger)
	if err != nil {
		logger.Error("failed to connect to coretime chain", "error", err)
		return migration.ExitFatal
	}
	defer coretimeClient.Close()

	sinks, closeSinks, err := buildSinks(ctx, cfg, stdout, logger)
	if err != nil {
		logger.Error("failed to initialize report sinks", "error", err)
		return migration.ExitFatal
	}
	defer closeSinks()

	driver := migration.NewDriver(
		relay.NewReader(relayClient, logger),
		coretime.NewReader(coretimeClient, cfg.Checks.CoreMaskWidth, logger),
		upgrade.NewTrigger(relayClient, logger),
		invariant.NewChecker(cfg.CheckerOptions(), logger),
		sinks,
		migration.Options{
			PollInterval:     cfg.Migration.PollInterval,
			MigrationTimeout: cfg.Migration.Timeout,
		},
		logger,
	)

	res, _ := driver.Run(ctx, runtimePath)

	if err := metrics.Push(context.Background(), cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, res.RunID, prometheus.DefaultGatherer); err != nil {
		logger.Warn("metrics push failed", "error", err)
	}
	return res.ExitCode()
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func dialLedger(ctx context.Context, cfg *config.Config, ledger model.Ledger, endpoint string, logger *slog.Logger) (*rpc.Client, error) {
	return rpc.Dial(ctx, endpoint, rpc.Options{
		Ledger:  ledger,
		Timeout: cfg.RPC.Timeout,
		Limiter: ratelimit.NewLimiter(cfg.RPC.RateLimitRPS, cfg.RPC.RateLimitBurst, ledger),
	}, logger)
}

// buildSinks always includes the stdout printer. The report store and alert
// channels are added when configured.
func buildSinks(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *slog.Logger) (report.MultiSink, func(), error) {
	format, err := report.ParseFormat(cfg.Report.Format)
	if err != nil {
		return nil, nil, err
	}
	sinks := report.MultiSink{report.NewPrinter(stdout, format)}
	closeFn := func() {}

	if cfg.Report.DBURL != "" {
		db, err := postgres.New(ctx, postgres.DefaultConfig(cfg.Report.DBURL))
		if err != nil {
			return nil, nil, fmt.Errorf("connect report store: %w", err)
		}
		if err := db.RunMigrations(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate report store: %w", err)
		}
		sinks = append(sinks, report.StoreSink{Store: postgres.NewReportRepo(db)})
		closeFn = func() { db.Close() }
		logger.Info("report store enabled")
	}

	var alerters []alert.Alerter
	if cfg.Alert.SlackWebhookURL != "" {
		alerters = append(alerters, alert.NewSlackAlerter(cfg.Alert.SlackWebhookURL))
	}
	if cfg.Alert.WebhookURL != "" {
		alerters = append(alerters, alert.NewWebhookAlerter(cfg.Alert.WebhookURL))
	}
	if len(alerters) > 0 {
		sinks = append(sinks, report.AlertSink{Alerter: alert.NewMultiAlerter(logger, alerters...)})
		logger.Info("alerting enabled", "channels", len(alerters))
	}

	return sinks, closeFn, nil
}
