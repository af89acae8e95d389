package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends every collector in gatherer to a Prometheus Pushgateway under
// the given job, grouped by run id.
func Push(ctx context.Context, gatewayURL, job, runID string, gatherer prometheus.Gatherer) error {
	if gatewayURL == "" {
		return nil
	}
	pusher := push.New(gatewayURL, job).Gatherer(gatherer)
	if runID != "" {
		pusher = pusher.Grouping("run_id", runID)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
