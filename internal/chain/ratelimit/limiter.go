package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/domain/model"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/metrics"
)

// Limiter paces RPC calls against one ledger endpoint. A nil *Limiter never
// blocks.
type Limiter struct {
	limiter *rate.Limiter
	ledger  model.Ledger
}

// NewLimiter allows rps requests per second with a burst of burst tokens.
// It returns nil when rps is not positive, meaning unlimited.
func NewLimiter(rps float64, burst int, ledger model.Ledger) *Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		ledger:  ledger,
	}
}

// Wait blocks until one token is available or ctx is done.
// Reserve is used so exactly one token is consumed per call.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	r := l.limiter.Reserve()
	if !r.OK() {
		return fmt.Errorf("rate: cannot reserve token")
	}
	delay := r.Delay()
	if delay <= 0 {
		return nil
	}
	metrics.RPCRateLimitWaits.WithLabelValues(l.ledger.String()).Inc()
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

// RecordRPCCall records one RPC call with its status class.
func RecordRPCCall(ledger model.Ledger, method string, err error) {
	metrics.RPCCallsTotal.WithLabelValues(ledger.String(), method, ClassifyRPCError(err)).Inc()
}

// ClassifyRPCError maps an RPC error to a metric status label.
func ClassifyRPCError(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "timeout"):
		return "timeout"
	case strings.Contains(lower, "rate limit") || strings.Contains(lower, "429") || strings.Contains(lower, "too many requests"):
		return "rate_limited"
	case strings.Contains(lower, "http status 5"):
		return "server_error"
	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "connection reset") ||
		strings.Contains(lower, "no such host") || strings.Contains(lower, "broken pipe") ||
		strings.Contains(lower, "websocket") || strings.Contains(lower, "eof"):
		return "network_error"
	default:
		return "rpc_error"
	}
}
