// Package migration drives one coretime migration check: snapshot the relay,
// upgrade its runtime, wait for the migration to execute, snapshot both
// ledgers and run the invariant checks.
package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/chain"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/failure"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/invariant"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/metrics"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/snapshot"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/tracing"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/upgrade"
)

const (
	DefaultPollInterval     = 500 * time.Millisecond
	DefaultMigrationTimeout = 60 * time.Second
)

// Upgrader applies a runtime upgrade and returns once it is included.
type Upgrader interface {
	Upgrade(ctx context.Context, runtimePath string) (*upgrade.Result, error)
}

// Sink receives the result of a run, including aborted runs.
type Sink interface {
	Emit(ctx context.Context, res *Result) error
}

type Options struct {
	// PollInterval is the pause between agenda reads while waiting for the
	// migration to execute.
	PollInterval time.Duration
	// MigrationTimeout bounds the whole wait.
	MigrationTimeout time.Duration
	// Tracer overrides the global tracer.
	Tracer trace.Tracer
}

type Driver struct {
	relay    chain.RelayReader
	coretime chain.CoretimeReader
	upgrader Upgrader
	checker  *invariant.Checker
	sink     Sink
	opts     Options
	tracer   trace.Tracer
	logger   *slog.Logger
	now      func() time.Time
}

func NewDriver(
	relay chain.RelayReader,
	coretime chain.CoretimeReader,
	upgrader Upgrader,
	checker *invariant.Checker,
	sink Sink,
	opts Options,
	logger *slog.Logger,
) *Driver {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.MigrationTimeout <= 0 {
		opts.MigrationTimeout = DefaultMigrationTimeout
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = tracing.Tracer("coretime-check/migration")
	}
	return &Driver{
		relay:    relay,
		coretime: coretime,
		upgrader: upgrader,
		checker:  checker,
		sink:     sink,
		opts:     opts,
		tracer:   tracer,
		logger:   logger.With("component", "migration_driver"),
		now:      time.Now,
	}
}

// Run executes one check run. The returned error is a *FatalError when the
// run aborted; findings never produce an error. The result is non-nil in
// both cases.
func (d *Driver) Run(ctx context.Context, runtimePath string) (*Result, error) {
	res := &Result{
		RunID:       uuid.NewString(),
		RuntimePath: runtimePath,
		StartedAt:   d.now().UTC(),
		Phase:       PhaseInit,
	}
	for _, c := range invariant.AllChecks {
		if !d.checker.Enabled(c) {
			res.Disabled = append(res.Disabled, c)
		}
	}

	ctx, span := d.tracer.Start(ctx, "migration.run", trace.WithAttributes(
		attribute.String("run_id", res.RunID),
		attribute.String("runtime_path", runtimePath),
	))
	defer span.End()

	logger := d.logger.With("run_id", res.RunID)
	logger.Info("check run started", "runtime_path", runtimePath)

	m := newMachine()
	err := d.runPhases(ctx, m, res, logger)
	res.Phase = m.current
	res.FinishedAt = d.now().UTC()

	if err != nil {
		var fatal *FatalError
		if !errors.As(err, &fatal) {
			fatal = newFatalError(m.current, err)
		}
		res.Fatal = fatal
		span.RecordError(fatal)
		span.SetStatus(codes.Error, fatal.Error())
		logger.Error("check run aborted",
			"phase", fatal.Phase,
			"class", fatal.Class,
			"reason", fatal.Reason,
			"error", fatal.Err,
		)
		d.emit(ctx, res, logger)
		metrics.RunsTotal.WithLabelValues(strings.ToLower(string(res.Outcome()))).Inc()
		return res, fatal
	}

	span.SetAttributes(
		attribute.String("outcome", string(res.Outcome())),
		attribute.Int("findings.hard", len(res.Findings.Hard())),
		attribute.Int("findings.soft", len(res.Findings.Soft())),
	)
	metrics.RunsTotal.WithLabelValues(strings.ToLower(string(res.Outcome()))).Inc()
	logger.Info("check run finished",
		"outcome", res.Outcome(),
		"hard_findings", len(res.Findings.Hard()),
		"soft_findings", len(res.Findings.Soft()),
		"duration", res.Duration(),
	)
	return res, nil
}

func (d *Driver) runPhases(ctx context.Context, m *machine, res *Result, logger *slog.Logger) error {
	if err := d.phase(ctx, m, PhasePreSnapshot, logger, func(ctx context.Context) error {
		before, err := snapshot.CaptureLegacy(ctx, d.relay)
		if err != nil {
			return err
		}
		res.Before = before
		logger.Info("pre-upgrade snapshot captured",
			"block", before.At.Number,
			"paras", len(before.Paras),
			"leases", len(before.Leases),
			"migration_scheduled", before.MigrationScheduled,
		)
		res.Findings = append(res.Findings, d.checker.BeforeUpgrade(before)...)
		return nil
	}); err != nil {
		return err
	}

	if err := d.phase(ctx, m, PhaseUpgrading, logger, func(ctx context.Context) error {
		up, err := d.upgrader.Upgrade(ctx, res.RuntimePath)
		if err != nil {
			return err
		}
		res.Upgrade = up
		attempts, err := d.waitForMigration(ctx, logger)
		res.PollAttempts = attempts
		return err
	}); err != nil {
		return err
	}

	if err := d.phase(ctx, m, PhasePostSnapshot, logger, func(ctx context.Context) error {
		after, err := snapshot.CaptureLegacy(ctx, d.relay)
		if err != nil {
			return err
		}
		res.After = after
		res.Findings = append(res.Findings, d.checker.AfterUpgrade(after)...)

		ct, err := snapshot.CaptureCoretime(ctx, d.coretime)
		if err != nil {
			return err
		}
		res.Coretime = ct
		logger.Info("post-upgrade snapshots captured",
			"relay_block", after.At.Number,
			"coretime_block", ct.At.Number,
			"reservations", len(ct.Reservations),
			"coretime_leases", len(ct.Leases),
		)
		return nil
	}); err != nil {
		return err
	}

	if err := d.phase(ctx, m, PhaseChecking, logger, func(context.Context) error {
		res.Findings = append(res.Findings, d.checker.Run(invariant.Input{
			Before:   res.Before,
			After:    res.After,
			Coretime: res.Coretime,
		})...)
		return nil
	}); err != nil {
		return err
	}

	return d.phase(ctx, m, PhaseReported, logger, func(ctx context.Context) error {
		res.Phase = PhaseReported
		res.FinishedAt = d.now().UTC()
		d.emit(ctx, res, logger)
		return nil
	})
}

func (d *Driver) phase(ctx context.Context, m *machine, phase Phase, logger *slog.Logger, fn func(context.Context) error) error {
	if err := m.advance(phase); err != nil {
		return err
	}

	ctx, span := d.tracer.Start(ctx, "migration."+strings.ToLower(string(phase)))
	defer span.End()

	start := time.Now()
	logger.Debug("phase started", "phase", phase)
	err := fn(ctx)
	metrics.PhaseDuration.WithLabelValues(string(phase)).Observe(time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return newFatalError(phase, err)
	}
	logger.Debug("phase completed", "phase", phase, "duration", time.Since(start))
	return nil
}

// waitForMigration polls the relay agenda until the migration call is gone.
// The first read happens immediately.
func (d *Driver) waitForMigration(ctx context.Context, logger *slog.Logger) (int, error) {
	waitCtx, cancel := context.WithTimeout(ctx, d.opts.MigrationTimeout)
	defer cancel()

	timedOut := func(attempts int) error {
		return failure.Timeout(fmt.Errorf("%w: agenda still holds the migration call after %s (%d polls)",
			ErrMigrationTimeout, d.opts.MigrationTimeout, attempts))
	}

	attempts := 0
	for {
		attempts++
		metrics.MigrationPollAttempts.Inc()

		scheduled, err := d.migrationScheduled(waitCtx)
		if err != nil {
			if ctx.Err() == nil && waitCtx.Err() != nil {
				return attempts, timedOut(attempts)
			}
			return attempts, fmt.Errorf("poll migration state: %w", err)
		}
		if !scheduled {
			logger.Info("migration executed", "polls", attempts)
			return attempts, nil
		}
		logger.Debug("migration still scheduled", "poll", attempts)

		timer := time.NewTimer(d.opts.PollInterval)
		select {
		case <-waitCtx.Done():
			timer.Stop()
			if ctx.Err() != nil {
				return attempts, ctx.Err()
			}
			return attempts, timedOut(attempts)
		case <-timer.C:
		}
	}
}

func (d *Driver) migrationScheduled(ctx context.Context) (bool, error) {
	head, err := d.relay.Head(ctx)
	if err != nil {
		return false, err
	}
	return d.relay.MigrationScheduled(ctx, head.Hash)
}

func (d *Driver) emit(ctx context.Context, res *Result, logger *slog.Logger) {
	if d.sink == nil {
		return
	}
	if err := d.sink.Emit(ctx, res); err != nil {
		logger.Error("report sink failed", "error", err)
	}
}
