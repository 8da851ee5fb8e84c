package conf

import (
	"testing"
	"time"

	"cachebench/bench"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadQueries(t *testing.T) {
	queries, err := LoadQueries("testdata/queries.yaml")
	require.NoError(t, err)
	require.Len(t, queries, 2)

	assert.Equal(t, "first_user", queries[0].Name)
	assert.Equal(t, "SELECT user_id, username, email\nFROM test_users\nORDER BY user_id\nLIMIT 1", queries[0].Body)
	assert.NotEmpty(t, queries[0].Diagnostic)
	assert.NotEmpty(t, queries[0].Mutation)
	assert.NotEmpty(t, queries[0].Restore)
	assert.Equal(t, "user_count", queries[1].Name)
	assert.Empty(t, queries[1].Diagnostic)
}

func TestLoadQueriesDuplicate(t *testing.T) {
	_, err := LoadQueries("testdata/duplicate.yaml")
	assert.ErrorIs(t, err, bench.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadQueriesMissingFile(t *testing.T) {
	_, err := LoadQueries("testdata/nope.yaml")
	assert.Error(t, err)
}

func TestParseQueriesRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"empty":         "queries: []",
		"no name":       "queries:\n  - body: SELECT 1",
		"no body":       "queries:\n  - name: q",
		"unknown field": "queries:\n  - name: q\n    body: SELECT 1\n    ttl: 30",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseQueries([]byte(raw))
			assert.ErrorIs(t, err, bench.ErrInvalidConfig)
		})
	}
}

func TestDefaultQueries(t *testing.T) {
	pgQueries := DefaultQueries("postgres")
	require.NotEmpty(t, pgQueries)
	names := map[string]bool{}
	for _, q := range pgQueries {
		assert.False(t, names[q.Name], "duplicate %s", q.Name)
		names[q.Name] = true
		assert.Equal(t, "EXPLAIN "+q.Body, q.Diagnostic)
	}
	assert.NotEmpty(t, pgQueries[0].Mutation)

	liteQueries := DefaultQueries("sqlite")
	assert.Equal(t, "EXPLAIN QUERY PLAN "+liteQueries[0].Body, liteQueries[0].Diagnostic)
}

func TestValidateAndDefaults(t *testing.T) {
	c := &Conf{
		Direct: bench.ConnConfig{Host: "localhost", Port: 5432},
		Params: bench.RunParams{DiagnosticFirst: true},
	}
	require.NoError(t, ValidateAndDefaults(c))
	assert.Equal(t, "postgres", c.Driver)
	assert.Equal(t, "cache", c.Test)
	assert.Equal(t, "text", c.Format)
	assert.Equal(t, 10, c.Params.Iterations)
	assert.Equal(t, time.Duration(0), c.Params.Delay)
	assert.NotEmpty(t, c.Queries)
}

func TestValidateAndDefaultsRejects(t *testing.T) {
	host := bench.ConnConfig{Host: "localhost"}
	cases := map[string]*Conf{
		"driver":       {Driver: "mongodb", Direct: host},
		"test":         {Test: "throughput", Direct: host},
		"iterations":   {Direct: host, Params: bench.RunParams{Iterations: -1}},
		"delay":        {Direct: host, Params: bench.RunParams{Delay: -time.Second}},
		"format":       {Direct: host, Format: "xml"},
		"no endpoints": {},
		"sqlite path":  {Driver: "sqlite"},
		"no mutation":  {Test: "invalidation", Direct: host, Queries: []bench.Query{{Name: "q", Body: "SELECT 1"}}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateAndDefaults(c), bench.ErrInvalidConfig)
		})
	}
}

func TestValidateLoadsQueriesFile(t *testing.T) {
	c := &Conf{Driver: "sqlite", SQLitePath: ":memory:", QueriesFile: "testdata/queries.yaml", Test: "invalidation"}
	require.NoError(t, ValidateAndDefaults(c))
	assert.Len(t, c.Queries, 2)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("BENCH_TEST_INT", "42")
	t.Setenv("BENCH_TEST_BAD_INT", "forty")
	t.Setenv("BENCH_TEST_BOOL", "false")
	t.Setenv("BENCH_TEST_DUR", "250ms")
	t.Setenv("BENCH_TEST_STR", "pgpool")

	assert.Equal(t, 42, EnvInt("BENCH_TEST_INT", 1))
	assert.Equal(t, 1, EnvInt("BENCH_TEST_BAD_INT", 1))
	assert.False(t, EnvBool("BENCH_TEST_BOOL", true))
	assert.Equal(t, 250*time.Millisecond, EnvDuration("BENCH_TEST_DUR", time.Second))
	assert.Equal(t, "pgpool", EnvString("BENCH_TEST_STR", ""))
	assert.Equal(t, "fallback", EnvString("BENCH_TEST_UNSET", "fallback"))
}
