package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/alert"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/migration"
)

// maxAlertFindings caps the findings quoted in an alert body.
const maxAlertFindings = 5

// AlertSink notifies on failed and aborted runs. Passing runs send nothing.
type AlertSink struct {
	Alerter alert.Alerter
}

func (s AlertSink) Emit(ctx context.Context, res *migration.Result) error {
	a, ok := BuildAlert(res)
	if !ok {
		return nil
	}
	if err := s.Alerter.Send(ctx, a); err != nil {
		return fmt.Errorf("send %s alert: %w", a.Type, err)
	}
	return nil
}

// BuildAlert returns the alert for res, or false when the run passed.
func BuildAlert(res *migration.Result) (alert.Alert, bool) {
	fields := map[string]string{
		"runtime": res.RuntimePath,
		"phase":   string(res.Phase),
	}

	switch res.Outcome() {
	case migration.OutcomeFatal:
		fields["class"] = string(res.Fatal.Class)
		fields["reason"] = res.Fatal.Reason
		return alert.Alert{
			Type:    alert.AlertTypeCheckFatal,
			RunID:   res.RunID,
			Title:   "coretime migration check aborted",
			Message: res.Fatal.Error(),
			Fields:  fields,
		}, true

	case migration.OutcomeFail:
		hard := res.Findings.Hard()
		fields["hard_findings"] = strconv.Itoa(len(hard))
		fields["soft_findings"] = strconv.Itoa(len(res.Findings.Soft()))

		var b strings.Builder
		for i, f := range hard {
			if i == maxAlertFindings {
				fmt.Fprintf(&b, "... and %d more", len(hard)-maxAlertFindings)
				break
			}
			b.WriteString(f.String())
			b.WriteString("\n")
		}
		return alert.Alert{
			Type:    alert.AlertTypeInvariantViolation,
			RunID:   res.RunID,
			Title:   "coretime migration invariants violated",
			Message: strings.TrimRight(b.String(), "\n"),
			Fields:  fields,
		}, true
	}
	return alert.Alert{}, false
}
