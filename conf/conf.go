package conf

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"cachebench/bench"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	DefaultIterations = 10
	DefaultDelay      = 100 * time.Millisecond

	dfltSeedRows = 1000
	dfltDriver   = "postgres"
	dfltTest     = "cache"
	dfltFormat   = "text"
)

type Conf struct {
	Driver      string
	Test        string
	Proxy       bench.ConnConfig
	Direct      bench.ConnConfig
	SQLitePath  string
	Params      bench.RunParams
	QueriesFile string
	Queries     []bench.Query
	Seed        bool
	SeedRows    int
	Format      string
	Chart       bool
	LogLevel    string
	SSLMode     string
	SimpleProto bool
}

// LoadEnv reads a .env file from the working directory when present.
// Variables already set in the environment win.
func LoadEnv() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Warn().Err(err).Msg("failed to load .env")
		}
	}
}

func EnvString(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return defaultValue
}

func EnvInt(key string, defaultValue int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer in environment, using default")
	}
	return defaultValue
}

func EnvBool(key string, defaultValue bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Warn().Str("key", key).Str("value", v).Msg("invalid boolean in environment, using default")
	}
	return defaultValue
}

func EnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Warn().Str("key", key).Str("value", v).Msg("invalid duration in environment, using default")
	}
	return defaultValue
}

// ValidateAndDefaults fills unset fields and rejects values the benchmark
// cannot run with. The query set is loaded here as well.
func ValidateAndDefaults(conf *Conf) error {
	if conf.Driver == "" {
		conf.Driver = dfltDriver
		log.Warn().Str("driver", dfltDriver).Msg("db not specified, using default")
	}
	switch conf.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("%w: database type %q not implemented", bench.ErrInvalidConfig, conf.Driver)
	}

	if conf.Test == "" {
		conf.Test = dfltTest
	}
	switch conf.Test {
	case "cache", "invalidation":
	default:
		return fmt.Errorf("%w: unknown test type %q", bench.ErrInvalidConfig, conf.Test)
	}

	if conf.Params.Iterations == 0 {
		conf.Params.Iterations = DefaultIterations
		log.Warn().Msgf("iterations not specified, using default: %d", DefaultIterations)
	}
	if conf.Params.Iterations < 0 {
		return fmt.Errorf("%w: iterations must be positive, got %d", bench.ErrInvalidConfig, conf.Params.Iterations)
	}
	if conf.Params.Delay < 0 {
		return fmt.Errorf("%w: delay must not be negative, got %s", bench.ErrInvalidConfig, conf.Params.Delay)
	}
	if conf.Params.Iterations < bench.MinConfidentTrials {
		log.Warn().
			Int("iterations", conf.Params.Iterations).
			Int("recommended", bench.MinConfidentTrials).
			Msg("few iterations, cache classification may be noisy")
	}

	if conf.Seed && conf.SeedRows <= 0 {
		conf.SeedRows = dfltSeedRows
		log.Warn().Msgf("seedRows not specified, using default: %d", dfltSeedRows)
	}

	if conf.Format == "" {
		conf.Format = dfltFormat
	}
	if conf.Format != "text" && conf.Format != "json" {
		return fmt.Errorf("%w: unknown format %q", bench.ErrInvalidConfig, conf.Format)
	}

	if conf.Driver == "sqlite" {
		if conf.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite requires a database path", bench.ErrInvalidConfig)
		}
	} else {
		if conf.Proxy.Host == "" && conf.Direct.Host == "" {
			return fmt.Errorf("%w: at least one of proxy or direct host is required", bench.ErrInvalidConfig)
		}
	}

	if conf.QueriesFile != "" {
		queries, err := LoadQueries(conf.QueriesFile)
		if err != nil {
			return err
		}
		conf.Queries = queries
	} else if len(conf.Queries) == 0 {
		conf.Queries = DefaultQueries(conf.Driver)
		log.Info().Int("queries", len(conf.Queries)).Msg("no queries file, using built-in query set")
	}

	if conf.Test == "invalidation" {
		var n int
		for _, q := range conf.Queries {
			if q.Mutation != "" {
				n++
			}
		}
		if n == 0 {
			return fmt.Errorf("%w: invalidation test needs at least one query with a mutation", bench.ErrInvalidConfig)
		}
	}
	return nil
}
