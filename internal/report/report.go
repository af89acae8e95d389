// Package report renders and forwards the result of a check run.
package report

import (
	"context"
	"errors"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/migration"
)

// Sink receives the result of a run.
type Sink = migration.Sink

// MultiSink forwards a result to every sink in order. Every sink is tried;
// the returned error joins all failures.
type MultiSink []Sink

func (m MultiSink) Emit(ctx context.Context, res *migration.Result) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Store persists results.
type Store interface {
	SaveRun(ctx context.Context, res *migration.Result) error
}

// StoreSink adapts a Store to a Sink.
type StoreSink struct {
	Store Store
}

func (s StoreSink) Emit(ctx context.Context, res *migration.Result) error {
	return s.Store.SaveRun(ctx, res)
}
