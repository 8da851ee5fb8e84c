package bench

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/guptarohit/asciigraph"
)

var (
	goodColor = color.New(color.FgGreen).SprintFunc()
	warnColor = color.New(color.FgYellow).SprintFunc()
	badColor  = color.New(color.FgHiRed).SprintFunc()
)

func PrintStats(w io.Writer, s Statistics) {
	fmt.Fprintf(w, "\n┌─────────────────────────────────────────┐\n")
	fmt.Fprintf(w, "│  %-39s│\n", truncate(s.Endpoint+" / "+s.Query, 39))
	fmt.Fprintf(w, "├─────────────────────────────────────────┤\n")
	fmt.Fprintf(w, "│  Trials:       %-24d│\n", s.Total)
	fmt.Fprintf(w, "│  Errors:       %-24d│\n", s.Failed)
	if !s.HasData() {
		fmt.Fprintf(w, "│  %-39s│\n", "NO DATA (all trials failed)")
		fmt.Fprintf(w, "└─────────────────────────────────────────┘\n")
		return
	}
	sig := Detect(s)
	fmt.Fprintf(w, "├─────────────────────────────────────────┤\n")
	fmt.Fprintf(w, "│  First (cold): %-24s│\n", fmtSample(s.First))
	fmt.Fprintf(w, "│  Last:         %-24s│\n", fmtSample(s.Last))
	fmt.Fprintf(w, "│  Latency avg:  %-24s│\n", FmtMs(s.Mean))
	fmt.Fprintf(w, "│  Latency min:  %-24s│\n", FmtMs(s.Min))
	fmt.Fprintf(w, "│  Latency max:  %-24s│\n", FmtMs(s.Max))
	fmt.Fprintf(w, "│  Latency p50:  %-24s│\n", FmtMs(s.Median))
	fmt.Fprintf(w, "│  Latency p95:  %-24s│\n", FmtMs(s.P95))
	fmt.Fprintf(w, "│  Stdev:        %-24s│\n", FmtMs(s.Stdev))
	fmt.Fprintf(w, "│  Cache signal: %-24s│\n", fmt.Sprintf("%.1f%% (%s)", sig.ImprovementPercent, sig.Strength))
	fmt.Fprintf(w, "└─────────────────────────────────────────┘\n")
}

// PrintSeries plots the successful trials of a series in order.
func PrintSeries(w io.Writer, series TrialSeries) {
	var data []float64
	for _, r := range series.Results {
		if !r.Failed() {
			data = append(data, r.Millis())
		}
	}
	if len(data) < 2 {
		return
	}
	fmt.Fprintln(w, asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Width(50),
		asciigraph.Caption(fmt.Sprintf("%s / %s latency (ms) per trial", series.Endpoint, series.Query)),
	))
}

func PrintPlan(w io.Writer, series TrialSeries) {
	if series.PlanErr != nil {
		fmt.Fprintf(w, "  ⚠ Diagnostic failed: %v\n", series.PlanErr)
		return
	}
	if series.Plan == "" {
		return
	}
	fmt.Fprintf(w, "  Plan (%s / %s):\n", series.Endpoint, series.Query)
	for _, line := range strings.Split(series.Plan, "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}
}

// TextReporter renders a Report as box-drawn tables.
type TextReporter struct{}

func (TextReporter) Render(w io.Writer, r Report) error {
	fmt.Fprintf(w, "\n╔═══════════════════════════════════════════════════════════════════════════════════════════════╗\n")
	fmt.Fprintf(w, "║  %-93s║\n", "CACHE COMPARISON  A = "+r.LabelA+"  B = "+r.LabelB)
	fmt.Fprintf(w, "║  %-93s║\n", "run "+r.RunID)
	fmt.Fprintf(w, "╠══════════════════════╦══════════╦══════════╦═══════════╦═════════╦═════════╦═════════╦════════╣\n")
	fmt.Fprintf(w, "║  Query               ║  A avg   ║  B avg   ║  Delta    ║  Diff   ║  A hit  ║  B hit  ║ Winner ║\n")
	fmt.Fprintf(w, "╠══════════════════════╬══════════╬══════════╬═══════════╬═════════╬═════════╬═════════╬════════╣\n")
	for _, row := range r.Rows {
		name := truncate(row.Query, 19)
		if row.NoData {
			fmt.Fprintf(w, "║  %-19s ║ %s ║\n", name, warnColor(fmt.Sprintf("%-70s", "NO DATA "+noDataSide(row))))
			continue
		}
		fmt.Fprintf(w, "║  %-19s ║ %8s ║ %8s ║ %9s ║ %6.1f%% ║ %6.1f%% ║ %6.1f%% ║ %s ║\n",
			name,
			FmtMs(row.A.Mean), FmtMs(row.B.Mean),
			fmtSigned(row.Delta), row.Percent,
			row.SignalA.ImprovementPercent, row.SignalB.ImprovementPercent,
			winnerCell(row.Winner))
	}
	t := r.Totals
	fmt.Fprintf(w, "╠══════════════════════╩══════════╩══════════╩═══════════╩═════════╩═════════╩═════════╩════════╣\n")
	fmt.Fprintf(w, "║  %-93s║\n", fmt.Sprintf("Queries with data: %d of %d", t.Queries, len(r.Rows)))
	if t.Queries > 0 {
		fmt.Fprintf(w, "║  %-93s║\n", fmt.Sprintf("Avg latency:  A %s   B %s   delta %s (%+.1f%%)",
			FmtMs(t.MeanA), FmtMs(t.MeanB), fmtSigned(t.Delta), t.Percent))
		fmt.Fprintf(w, "║  %-93s║\n", fmt.Sprintf("Avg best:     A %s   B %s   improvement %.1f%%",
			FmtMs(t.MinA), FmtMs(t.MinB), t.BestDiffPercent))
		fmt.Fprintf(w, "║  %-93s║\n", fmt.Sprintf("Avg cache signal:  A %.1f%%   B %.1f%%", t.ImprovementA, t.ImprovementB))
	}
	fmt.Fprintf(w, "╠═══════════════════════════════════════════════════════════════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║  Recommendation: %s║\n", recommendationCell(r.Recommendation, 77))
	fmt.Fprintf(w, "╚═══════════════════════════════════════════════════════════════════════════════════════════════╝\n")
	for _, n := range r.Notes {
		fmt.Fprintf(w, "  ⚠ %s\n", n)
	}
	return nil
}

func PrintInvalidation(w io.Writer, res InvalidationResult) {
	fmt.Fprintf(w, "\n╔═════════════════════════════════════════════════════════════╗\n")
	fmt.Fprintf(w, "║  %-59s║\n", truncate("CACHE INVALIDATION: "+res.Endpoint+" / "+res.Query, 59))
	fmt.Fprintf(w, "╠═════════════════════════════════════════════════════════════╣\n")
	for _, s := range []struct {
		label string
		r     QueryResult
	}{
		{"1. Cold read", res.Cold},
		{"2. Warm read", res.Warm},
		{"3. Mutation", res.Mutation},
		{"4. Read after mutation", res.AfterMutation},
		{"5. Read again", res.Rewarm},
	} {
		fmt.Fprintf(w, "║  %-24s %-34s║\n", s.label, fmtResult(s.r))
	}
	fmt.Fprintf(w, "╠═════════════════════════════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║  %-59s║\n", fmt.Sprintf("Warm gain: %.1f%%   Re-warm gain: %.1f%%", res.WarmGain, res.RewarmGain))
	var verdict string
	switch res.Verdict {
	case VerdictInvalidated:
		verdict = goodColor(fmt.Sprintf("%-49s", "✅ "+res.Verdict.String()))
	case VerdictStale:
		verdict = badColor(fmt.Sprintf("%-49s", "❌ "+res.Verdict.String()))
	default:
		verdict = warnColor(fmt.Sprintf("%-49s", "⚠️  "+res.Verdict.String()))
	}
	fmt.Fprintf(w, "║  Verdict:  %s║\n", verdict)
	if res.RestoreErr != nil {
		fmt.Fprintf(w, "║  %-59s║\n", truncate("Restore failed: "+res.RestoreErr.Error(), 59))
	}
	fmt.Fprintf(w, "╚═════════════════════════════════════════════════════════════╝\n")
}

func noDataSide(row ComparisonRow) string {
	switch {
	case !row.A.HasData() && !row.B.HasData():
		return "(both endpoints)"
	case !row.A.HasData():
		return "(A)"
	default:
		return "(B)"
	}
}

func winnerCell(w Winner) string {
	s := fmt.Sprintf("%-6s", w)
	if w == WinnerTie {
		return s
	}
	return goodColor(s)
}

func recommendationCell(r Recommendation, width int) string {
	s := fmt.Sprintf("%-*s", width, r.String())
	switch r {
	case WorthIt:
		return goodColor(s)
	case Modest:
		return warnColor(s)
	default:
		return badColor(s)
	}
}

func fmtSample(s Sample) string {
	if s.Failed {
		return "FAILED"
	}
	return FmtMs(s.Millis)
}

func fmtResult(r QueryResult) string {
	if r.Failed() {
		return truncate("FAILED: "+r.Err.Error(), 34)
	}
	return FmtMs(r.Millis())
}

func fmtSigned(ms float64) string {
	if ms < 0 {
		return "-" + FmtMs(-ms)
	}
	return "+" + FmtMs(ms)
}

// FmtMs formats a millisecond value, switching to µs below one millisecond.
func FmtMs(ms float64) string {
	if ms < 1 {
		return fmt.Sprintf("%.0fµs", ms*1000)
	}
	return fmt.Sprintf("%.2fms", ms)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
