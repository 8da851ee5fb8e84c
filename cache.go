package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"cachebench/bench"
	"cachebench/conf"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	labelDirect = "Direct"
	labelProxy  = "Through Proxy"
)

func queryNames(queries []bench.Query) []string {
	names := make([]string, 0, len(queries))
	for _, q := range queries {
		names = append(names, q.Name)
	}
	return names
}

// runPhase benchmarks one endpoint and closes its connection before
// returning. A connection failure yields results without statistics.
func runPhase(ctx context.Context, out io.Writer, cfg *conf.Conf, label string, cc bench.ConnConfig, step string, seed bool) bench.EndpointResults {
	failed := func(err error) bench.EndpointResults {
		return bench.EndpointResults{
			Label:   label,
			Queries: queryNames(cfg.Queries),
			Stats:   map[string]bench.Statistics{},
			Err:     err,
		}
	}

	if !hasEndpoint(cfg, cc) {
		fmt.Fprintf(out, "\n%s Skipping %s (no host given)\n", step, label)
		return failed(fmt.Errorf("%w: endpoint not configured", bench.ErrNoData))
	}

	fmt.Fprintf(out, "\n%s Connecting (%s)...\n", step, label)
	exec, err := connect(cfg, cc)
	if err != nil {
		fmt.Fprintf(out, "  ✗ %s connection failed: %v\n", label, err)
		log.Error().Err(err).Str("endpoint", label).Msg("connection failed, continuing without this endpoint")
		return failed(fmt.Errorf("%w: %w", bench.ErrConnectionLost, err))
	}
	defer func() {
		if err := exec.Close(); err != nil {
			log.Warn().Err(err).Str("endpoint", label).Msg("failed to close connection")
		}
	}()
	fmt.Fprintln(out, "  ✓ Connected")

	if seed {
		fmt.Fprintln(out, "  Seeding test data...")
		if err := seedData(ctx, cfg, exec); err != nil {
			fmt.Fprintf(out, "  ✗ Seed failed: %v\n", err)
			log.Error().Err(err).Str("endpoint", label).Msg("seeding failed")
		} else {
			fmt.Fprintln(out, "  ✓ Data ready")
		}
	}

	fmt.Fprintf(out, "\n── %s: %d queries × %d trials ──\n", label, len(cfg.Queries), cfg.Params.Iterations)
	runner := bench.NewRunner(exec)
	res, series := runner.RunEndpoint(ctx, label, cfg.Queries, cfg.Params)
	for _, s := range series {
		printPhaseSeries(out, cfg, s, res.Stats[s.Query])
	}
	if res.Err != nil {
		fmt.Fprintf(out, "  ✗ Phase aborted: %v\n", res.Err)
	}
	return res
}

func printPhaseSeries(out io.Writer, cfg *conf.Conf, s bench.TrialSeries, st bench.Statistics) {
	bench.PrintPlan(out, s)
	bench.PrintStats(out, st)
	if cfg.Chart {
		bench.PrintSeries(out, s)
	}
}

// RunCacheComparison benchmarks the direct endpoint, then the proxy, and
// renders the comparison. The phases never overlap.
func RunCacheComparison(cfg *conf.Conf) error {
	ctx := context.Background()
	reporter, err := bench.NewReporter(cfg.Format)
	if err != nil {
		return err
	}
	var out io.Writer = os.Stdout
	if cfg.Format == "json" {
		out = os.Stderr
	}

	fmt.Fprintln(out, "═══════════════════════════════════════════")
	fmt.Fprintf(out, "  %s Cache Benchmark\n", driverTitle(cfg.Driver))
	fmt.Fprintln(out, "═══════════════════════════════════════════")
	fmt.Fprintf(out, "  Queries: %d | Trials: %d | Delay: %s | Diagnostic first: %t\n",
		len(cfg.Queries), cfg.Params.Iterations, cfg.Params.Delay, cfg.Params.DiagnosticFirst)

	direct := runPhase(ctx, out, cfg, labelDirect, cfg.Direct, "[1/2]", cfg.Seed)
	proxy := runPhase(ctx, out, cfg, labelProxy, cfg.Proxy, "[2/2]", cfg.Seed && !hasEndpoint(cfg, cfg.Direct))

	report := bench.Compare(direct, proxy)
	report.RunID = uuid.New().String()
	if err := reporter.Render(os.Stdout, report); err != nil {
		return err
	}
	if report.Totals.Queries == 0 {
		return fmt.Errorf("%w: no query has results on both endpoints", bench.ErrNoData)
	}
	return nil
}

func driverTitle(driver string) string {
	switch driver {
	case "mysql":
		return "MySQL"
	case "sqlite":
		return "SQLite"
	default:
		return "PostgreSQL"
	}
}
