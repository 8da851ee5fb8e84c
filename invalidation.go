package main

import (
	"context"
	"fmt"
	"os"

	"cachebench/bench"
	"cachebench/conf"

	"github.com/rs/zerolog/log"
)

// RunInvalidation probes whether writes evict cached results. It targets
// the proxy, falling back to the direct endpoint when no proxy is given.
func RunInvalidation(cfg *conf.Conf) error {
	ctx := context.Background()

	label, cc := labelProxy, cfg.Proxy
	if !hasEndpoint(cfg, cc) {
		label, cc = labelDirect, cfg.Direct
	}

	fmt.Println("═══════════════════════════════════════════")
	fmt.Printf("  %s Cache Invalidation Test\n", driverTitle(cfg.Driver))
	fmt.Println("═══════════════════════════════════════════")
	fmt.Printf("  Endpoint: %s | Delay: %s\n", label, cfg.Params.Delay)

	if cfg.Seed && hasEndpoint(cfg, cfg.Direct) {
		fmt.Println("\n[1/3] Seeding test data (direct)...")
		direct, err := connect(cfg, cfg.Direct)
		if err != nil {
			return fmt.Errorf("%w: direct: %w", bench.ErrConnectionLost, err)
		}
		err = seedData(ctx, cfg, direct)
		direct.Close()
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		fmt.Println("  ✓ Data ready")
	}

	fmt.Printf("\n[2/3] Connecting (%s)...\n", label)
	exec, err := connect(cfg, cc)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", bench.ErrConnectionLost, label, err)
	}
	defer exec.Close()
	fmt.Println("  ✓ Connected")

	fmt.Println("\n[3/3] Probing...")
	runner := bench.NewRunner(exec)
	var stale int
	for _, q := range cfg.Queries {
		if q.Mutation == "" {
			log.Debug().Str("query", q.Name).Msg("no mutation, skipping")
			continue
		}
		res := runner.ProbeInvalidation(ctx, label, q, cfg.Params)
		bench.PrintInvalidation(os.Stdout, res)
		if res.Verdict == bench.VerdictStale {
			stale++
		}
	}
	if stale > 0 {
		log.Warn().Int("queries", stale).Msg("cached results survived a write, reads may be stale")
	}
	return nil
}
