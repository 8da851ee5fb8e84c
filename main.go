package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"cachebench/bench"
	"cachebench/conf"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupLog(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func usage() {
	fmt.Println("Usage: cachebench [flags]")
	fmt.Println()
	fmt.Println("Compares query latency on a direct connection (A) and through a caching proxy (B).")
	fmt.Println()
	fmt.Println("Connection flags (defaults from BENCH_* variables, .env is read if present):")
	fmt.Println("  -direct-host -direct-port -direct-user -direct-pass -direct-db")
	fmt.Println("  -proxy-host  -proxy-port  -proxy-user  -proxy-pass  -proxy-db")
	fmt.Println("  -sqlite-path   Database file for -db sqlite (used for both endpoints)")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -db            Database type: postgres, mysql, sqlite (default: postgres)")
	fmt.Println("  -test          Test type: cache, invalidation (default: cache)")
	fmt.Println("  -iterations    Trials per query (default: 10)")
	fmt.Println("  -delay         Pause between trials (default: 100ms)")
	fmt.Println("  -diagnostic    Run the EXPLAIN form once before the trials (default: true)")
	fmt.Println("  -queries-file  YAML query set (default: built-in set over test_users)")
	fmt.Println("  -seed          Create and fill test_users through the direct endpoint")
	fmt.Println("  -format        Report format: text, json (default: text)")
	fmt.Println("  -chart         Plot each trial series")
}

func main() {
	conf.LoadEnv()
	cmd := flag.NewFlagSet("cachebench", flag.ExitOnError)
	cmd.Usage = usage

	// Test selection
	dbType := cmd.String("db", conf.EnvString("BENCH_DB", "postgres"), "Database type: postgres, mysql, sqlite")
	testType := cmd.String("test", conf.EnvString("BENCH_TEST", "cache"), "Test type: cache, invalidation")

	// Proxy connection (endpoint B)
	proxyHost := cmd.String("proxy-host", conf.EnvString("BENCH_PROXY_HOST", ""), "Proxy host")
	proxyPort := cmd.Int("proxy-port", conf.EnvInt("BENCH_PROXY_PORT", 0), "Proxy port (e.g., 9999 for pgpool)")
	proxyUser := cmd.String("proxy-user", conf.EnvString("BENCH_PROXY_USER", ""), "Proxy user")
	proxyPass := cmd.String("proxy-pass", conf.EnvString("BENCH_PROXY_PASS", ""), "Proxy password")
	proxyDB := cmd.String("proxy-db", conf.EnvString("BENCH_PROXY_DB", ""), "Proxy database name")

	// Direct connection (endpoint A)
	directHost := cmd.String("direct-host", conf.EnvString("BENCH_DIRECT_HOST", ""), "Direct DB host")
	directPort := cmd.Int("direct-port", conf.EnvInt("BENCH_DIRECT_PORT", 0), "Direct DB port")
	directUser := cmd.String("direct-user", conf.EnvString("BENCH_DIRECT_USER", ""), "Direct DB user")
	directPass := cmd.String("direct-pass", conf.EnvString("BENCH_DIRECT_PASS", ""), "Direct DB password")
	directDB := cmd.String("direct-db", conf.EnvString("BENCH_DIRECT_DB", ""), "Direct DB name")
	sqlitePath := cmd.String("sqlite-path", conf.EnvString("BENCH_SQLITE_PATH", ""), "SQLite database file")

	// Benchmark parameters
	iterations := cmd.Int("iterations", conf.EnvInt("BENCH_ITERATIONS", conf.DefaultIterations), "Trials per query")
	delay := cmd.Duration("delay", conf.EnvDuration("BENCH_DELAY", conf.DefaultDelay), "Pause between trials")
	diagnostic := cmd.Bool("diagnostic", conf.EnvBool("BENCH_DIAGNOSTIC", true), "Run the diagnostic form of each query first")
	queriesFile := cmd.String("queries-file", conf.EnvString("BENCH_QUERIES_FILE", ""), "YAML query set")
	seed := cmd.Bool("seed", conf.EnvBool("BENCH_SEED", false), "Seed test_users through the direct endpoint")
	seedRows := cmd.Int("seed-rows", conf.EnvInt("BENCH_SEED_ROWS", 1000), "Rows to insert for test data")

	// Output
	format := cmd.String("format", conf.EnvString("BENCH_FORMAT", "text"), "Report format: text, json")
	chart := cmd.Bool("chart", conf.EnvBool("BENCH_CHART", false), "Plot each trial series")
	logLevel := cmd.String("log-level", conf.EnvString("BENCH_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")

	// Postgres specifics
	sslmode := cmd.String("sslmode", conf.EnvString("BENCH_SSLMODE", "disable"), "Postgres sslmode")
	simpleProto := cmd.Bool("simple-protocol", conf.EnvBool("BENCH_SIMPLE_PROTOCOL", true), "Use the Postgres simple query protocol")

	cmd.Parse(os.Args[1:])
	setupLog(*logLevel)

	if *proxyHost == "" && *directHost == "" && *sqlitePath == "" {
		usage()
		os.Exit(1)
	}

	cfg := &conf.Conf{
		Driver: *dbType,
		Test:   *testType,
		Proxy: bench.ConnConfig{
			Host:     *proxyHost,
			Port:     *proxyPort,
			User:     *proxyUser,
			Password: *proxyPass,
			Database: *proxyDB,
		},
		Direct: bench.ConnConfig{
			Host:     *directHost,
			Port:     *directPort,
			User:     *directUser,
			Password: *directPass,
			Database: *directDB,
		},
		SQLitePath: *sqlitePath,
		Params: bench.RunParams{
			Iterations:      *iterations,
			Delay:           *delay,
			DiagnosticFirst: *diagnostic,
		},
		QueriesFile: *queriesFile,
		Seed:        *seed,
		SeedRows:    *seedRows,
		Format:      *format,
		Chart:       *chart,
		LogLevel:    *logLevel,
		SSLMode:     *sslmode,
		SimpleProto: *simpleProto,
	}
	if err := conf.ValidateAndDefaults(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	var err error
	switch cfg.Test {
	case "cache":
		err = RunCacheComparison(cfg)
	case "invalidation":
		err = RunInvalidation(cfg)
	}
	if err != nil {
		if errors.Is(err, bench.ErrNoData) {
			log.Error().Err(err).Msg("benchmark produced no usable data")
		} else {
			log.Error().Err(err).Msg("benchmark failed")
		}
		os.Exit(1)
	}
}
