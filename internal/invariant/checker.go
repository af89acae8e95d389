package invariant

import (
	"log/slog"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/domain/model"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/lease"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/metrics"
)

// Options configures a Checker.
type Options struct {
	// Disabled checks are skipped and produce no findings.
	Disabled map[Check]bool
	// Lease holds the projection constants.
	Lease lease.Params
	// CoreMaskWidth is the byte width of a full reservation mask.
	CoreMaskWidth int
}

func DefaultOptions() Options {
	return Options{
		Lease:         lease.DefaultParams(),
		CoreMaskWidth: model.DefaultCoreMaskWidth,
	}
}

// Input is the set of snapshots compared by Run.
type Input struct {
	Before   *model.LegacySnapshot
	After    *model.LegacySnapshot
	Coretime *model.CoretimeSnapshot
}

// ReferenceBlock is the relay height at which the migration call executes:
// the block after the pre-upgrade snapshot.
func (in Input) ReferenceBlock() model.BlockNumber {
	return in.Before.At.Number + 1
}

// Checker runs the invariant checks. It never stops at the first violation;
// every enabled check runs and contributes its findings.
type Checker struct {
	opts   Options
	logger *slog.Logger
}

func NewChecker(opts Options, logger *slog.Logger) *Checker {
	if opts.CoreMaskWidth <= 0 {
		opts.CoreMaskWidth = model.DefaultCoreMaskWidth
	}
	if opts.Lease == (lease.Params{}) {
		opts.Lease = lease.DefaultParams()
	}
	return &Checker{
		opts:   opts,
		logger: logger.With("component", "invariant_checker"),
	}
}

func (c *Checker) Enabled(check Check) bool {
	return !c.opts.Disabled[check]
}

// BeforeUpgrade runs the pre-upgrade half of the agenda check.
func (c *Checker) BeforeUpgrade(before *model.LegacySnapshot) Findings {
	return c.run(AgendaPresence, func() Findings {
		return CheckAgendaScheduled(before.MigrationScheduled)
	})
}

// AfterUpgrade runs the post-upgrade half of the agenda check.
func (c *Checker) AfterUpgrade(after *model.LegacySnapshot) Findings {
	return c.run(AgendaPresence, func() Findings {
		return CheckAgendaCleared(after.MigrationScheduled)
	})
}

// Run executes every enabled cross-snapshot check in order.
func (c *Checker) Run(in Input) Findings {
	var out Findings

	out = append(out, c.run(ParaSetStability, func() Findings {
		return CheckParaSetStability(in.Before.Paras, in.After.Paras)
	})...)

	out = append(out, c.run(LeaseRecordStability, func() Findings {
		return CheckLeaseRecordStability(in.Before.Leases, in.After.Leases)
	})...)

	out = append(out, c.run(ReservationCompleteness, func() Findings {
		return CheckReservationCompleteness(model.SystemChains(in.Before.Leases), in.Coretime.Reservations, c.opts.CoreMaskWidth)
	})...)

	out = append(out, c.run(LeaseProjection, func() Findings {
		expected := ExpectedCoretimeLeases(c.opts.Lease, in.ReferenceBlock(), in.Before.Leases)
		c.logger.Debug("lease projection",
			"reference_block", in.ReferenceBlock(),
			"legacy_leases", in.Before.Leases,
			"expected_leases", expected,
			"actual_leases", in.Coretime.Leases,
		)
		return CheckLeaseProjection(expected, in.Coretime.Leases)
	})...)

	out = append(out, c.run(CoreCountParity, func() Findings {
		return CheckCoreCountParity(in.After.ActiveCoreCount, in.Coretime.CoreCountInbox)
	})...)

	out = append(out, c.run(NoUnexpectedPool, func() Findings {
		return CheckNoUnexpectedPool(in.After.Leases, in.After.ActiveCoreCount)
	})...)

	return out
}

func (c *Checker) run(check Check, fn func() Findings) Findings {
	if !c.Enabled(check) {
		metrics.ChecksSkippedTotal.WithLabelValues(string(check)).Inc()
		c.logger.Info("check skipped", "check", check)
		return nil
	}

	findings := fn()
	metrics.ChecksRunTotal.WithLabelValues(string(check)).Inc()
	for _, f := range findings {
		metrics.FindingsTotal.WithLabelValues(string(f.Check), string(f.Severity)).Inc()
		attrs := []any{"check", f.Check, "kind", f.Kind, "expected", f.Expected, "observed", f.Observed}
		if f.ParaID != nil {
			attrs = append(attrs, "para_id", *f.ParaID)
		}
		if f.Severity == SeverityHard {
			c.logger.Error(f.Message, attrs...)
		} else {
			c.logger.Warn(f.Message, attrs...)
		}
	}
	if len(findings) == 0 {
		c.logger.Info("check passed", "check", check)
	}
	return findings
}
