package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/domain/model"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/invariant"
	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/migration"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want text or json)", s)
	}
}

// Check statuses in the per-check summary.
const (
	StatusPass    = "PASS"
	StatusFail    = "FAIL"
	StatusWarn    = "WARN"
	StatusSkipped = "SKIPPED"
	StatusNotRun  = "NOT RUN"
)

// Printer writes the run report to w.
type Printer struct {
	w      io.Writer
	format Format
}

func NewPrinter(w io.Writer, format Format) *Printer {
	if format == "" {
		format = FormatText
	}
	return &Printer{w: w, format: format}
}

func (p *Printer) Emit(_ context.Context, res *migration.Result) error {
	if p.format == FormatJSON {
		return printJSONReport(p.w, res)
	}
	printTextReport(p.w, res)
	return nil
}

// CheckStatuses summarizes each known check in execution order.
func CheckStatuses(res *migration.Result) []CheckStatus {
	disabled := make(map[invariant.Check]bool, len(res.Disabled))
	for _, c := range res.Disabled {
		disabled[c] = true
	}
	byCheck := res.Findings.ByCheck()

	out := make([]CheckStatus, 0, len(invariant.AllChecks))
	for _, c := range invariant.AllChecks {
		fs := byCheck[c]
		st := CheckStatus{Check: c, Hard: len(fs.Hard()), Soft: len(fs.Soft())}
		switch {
		case disabled[c]:
			st.Status = StatusSkipped
		case st.Hard > 0:
			st.Status = StatusFail
		case st.Soft > 0:
			st.Status = StatusWarn
		case !completed(res, c):
			st.Status = StatusNotRun
		default:
			st.Status = StatusPass
		}
		out = append(out, st)
	}
	return out
}

type CheckStatus struct {
	Check  invariant.Check `json:"check"`
	Status string          `json:"status"`
	Hard   int             `json:"hard"`
	Soft   int             `json:"soft"`
}

// completed reports whether every half of the check ran.
func completed(res *migration.Result, c invariant.Check) bool {
	if c == invariant.AgendaPresence {
		return res.Before != nil && res.After != nil
	}
	return res.Fatal == nil
}

func printTextReport(w io.Writer, res *migration.Result) {
	fmt.Fprintln(w, "=== Coretime Migration Check Report ===")
	fmt.Fprintf(w, "Run: %s\n", res.RunID)
	fmt.Fprintf(w, "Runtime: %s\n", res.RuntimePath)
	fmt.Fprintf(w, "Relay block before upgrade: %s\n", legacyRef(res.Before))
	fmt.Fprintf(w, "Relay block after upgrade: %s\n", legacyRef(res.After))
	fmt.Fprintf(w, "Coretime block: %s\n", coretimeRef(res.Coretime))
	if res.Upgrade != nil {
		fmt.Fprintf(w, "Runtime code hash: %s (%d bytes)\n", res.Upgrade.CodeHash, res.Upgrade.CodeSize)
	}
	fmt.Fprintf(w, "Migration polls: %d\n", res.PollAttempts)
	fmt.Fprintf(w, "Duration: %s\n", res.Duration().Round(time.Millisecond))
	fmt.Fprintf(w, "Hard findings: %d\n", len(res.Findings.Hard()))
	fmt.Fprintf(w, "Soft findings: %d\n", len(res.Findings.Soft()))

	if hard := res.Findings.Hard(); len(hard) > 0 {
		fmt.Fprintln(w, "\n--- Hard findings ---")
		for _, f := range hard {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
	if soft := res.Findings.Soft(); len(soft) > 0 {
		fmt.Fprintln(w, "\n--- Soft findings ---")
		for _, f := range soft {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}

	fmt.Fprintln(w, "\n--- Checks ---")
	for _, st := range CheckStatuses(res) {
		fmt.Fprintf(w, "  %-26s %s\n", st.Check, st.Status)
	}

	if res.Fatal != nil {
		fmt.Fprintln(w, "\n--- Fatal ---")
		fmt.Fprintf(w, "  phase=%s class=%s reason=%s\n", res.Fatal.Phase, res.Fatal.Class, res.Fatal.Reason)
		fmt.Fprintf(w, "  %v\n", res.Fatal.Err)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Result: %s\n", res.Outcome())
	fmt.Fprintln(w, "DONE")
}

func legacyRef(s *model.LegacySnapshot) string {
	if s == nil {
		return "n/a"
	}
	return fmt.Sprintf("#%d %s", s.At.Number, s.At.Hash)
}

func coretimeRef(s *model.CoretimeSnapshot) string {
	if s == nil {
		return "n/a"
	}
	return fmt.Sprintf("#%d %s", s.At.Number, s.At.Hash)
}

type jsonFatal struct {
	Phase  migration.Phase `json:"phase"`
	Class  string          `json:"class"`
	Reason string          `json:"reason"`
	Error  string          `json:"error"`
}

type jsonBlock struct {
	Number model.BlockNumber `json:"number"`
	Hash   string            `json:"hash"`
}

func blockOf(ref model.BlockRef) *jsonBlock {
	return &jsonBlock{Number: ref.Number, Hash: ref.Hash}
}

func printJSONReport(w io.Writer, res *migration.Result) error {
	report := struct {
		RunID        string             `json:"run_id"`
		RuntimePath  string             `json:"runtime_path"`
		StartedAt    time.Time          `json:"started_at"`
		FinishedAt   time.Time          `json:"finished_at"`
		DurationMS   int64              `json:"duration_ms"`
		Result       migration.Outcome  `json:"result"`
		ExitCode     int                `json:"exit_code"`
		Phase        migration.Phase    `json:"phase"`
		RelayBefore  *jsonBlock         `json:"relay_before,omitempty"`
		RelayAfter   *jsonBlock         `json:"relay_after,omitempty"`
		Coretime     *jsonBlock         `json:"coretime,omitempty"`
		CodeHash     string             `json:"code_hash,omitempty"`
		PollAttempts int                `json:"poll_attempts"`
		Disabled     []invariant.Check  `json:"disabled_checks"`
		Checks       []CheckStatus      `json:"checks"`
		Findings     invariant.Findings `json:"findings"`
		Fatal        *jsonFatal         `json:"fatal,omitempty"`
	}{
		RunID:        res.RunID,
		RuntimePath:  res.RuntimePath,
		StartedAt:    res.StartedAt,
		FinishedAt:   res.FinishedAt,
		DurationMS:   res.Duration().Milliseconds(),
		Result:       res.Outcome(),
		ExitCode:     res.ExitCode(),
		Phase:        res.Phase,
		PollAttempts: res.PollAttempts,
		Disabled:     res.Disabled,
		Checks:       CheckStatuses(res),
		Findings:     res.Findings,
	}
	if report.Disabled == nil {
		report.Disabled = []invariant.Check{}
	}
	if report.Findings == nil {
		report.Findings = invariant.Findings{}
	}
	if res.Before != nil {
		report.RelayBefore = blockOf(res.Before.At)
	}
	if res.After != nil {
		report.RelayAfter = blockOf(res.After.At)
	}
	if res.Coretime != nil {
		report.Coretime = blockOf(res.Coretime.At)
	}
	if res.Upgrade != nil {
		report.CodeHash = res.Upgrade.CodeHash
	}
	if res.Fatal != nil {
		report.Fatal = &jsonFatal{
			Phase:  res.Fatal.Phase,
			Class:  string(res.Fatal.Class),
			Reason: res.Fatal.Reason,
			Error:  res.Fatal.Err.Error(),
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
