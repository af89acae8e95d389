package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/domain/model"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/metrics"
)

func TestNewLimiter(t *testing.T) {
	l := NewLimiter(10.0, 5, model.LedgerRelay)

	require.NotNil(t, l)
	assert.Equal(t, model.LedgerRelay, l.ledger)
	assert.InDelta(t, 10.0, float64(l.limiter.Limit()), 0.001)
	assert.Equal(t, 5, l.limiter.Burst())
}

func TestNewLimiter_DisabledAndBurstFloor(t *testing.T) {
	assert.Nil(t, NewLimiter(0, 5, model.LedgerRelay))

	var disabled *Limiter
	assert.NoError(t, disabled.Wait(context.Background()))

	l := NewLimiter(5, 0, model.LedgerCoretime)
	require.NotNil(t, l)
	assert.Equal(t, 1, l.limiter.Burst())
}

func TestLimiter_AllowWithinBurst(t *testing.T) {
	const burst = 5
	l := NewLimiter(100, burst, model.LedgerRelay)

	for i := 0; i < burst; i++ {
		start := time.Now()
		require.NoError(t, l.Wait(context.Background()), "request %d", i)
		assert.Less(t, time.Since(start), 50*time.Millisecond, "request %d should not wait", i)
	}
}

func TestLimiter_WaitWhenExhausted(t *testing.T) {
	// 1 token every 100ms.
	l := NewLimiter(10, 1, model.LedgerCoretime)
	waits := testutil.ToFloat64(metrics.RPCRateLimitWaits.WithLabelValues("coretime"))

	require.NoError(t, l.Wait(context.Background()))

	start := time.Now()
	require.NoError(t, l.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, waits+1, testutil.ToFloat64(metrics.RPCRateLimitWaits.WithLabelValues("coretime")))
}

func TestLimiter_ContextCancellation(t *testing.T) {
	l := NewLimiter(1, 1, model.LedgerRelay)
	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, l.Wait(ctx), context.Canceled)
}

func TestClassifyRPCError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{fmt.Errorf("state_getStorage: %w", context.DeadlineExceeded), "timeout"},
		{context.Canceled, "canceled"},
		{errors.New("http status 429: Too Many Requests"), "rate_limited"},
		{errors.New("http status 503: unavailable"), "server_error"},
		{errors.New("dial tcp 127.0.0.1:8000: connect: connection refused"), "network_error"},
		{errors.New("websocket: close 1006 (abnormal closure): unexpected EOF"), "network_error"},
		{errors.New("Invalid params"), "rpc_error"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyRPCError(tc.err), "%v", tc.err)
	}
}

func TestRecordRPCCall(t *testing.T) {
	counter := metrics.RPCCallsTotal.WithLabelValues("relay", "chain_getHeader", "ok")
	before := testutil.ToFloat64(counter)

	RecordRPCCall(model.LedgerRelay, "chain_getHeader", nil)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
