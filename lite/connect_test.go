package lite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"cachebench/bench"
	"cachebench/conf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedAndExecute(t *testing.T) {
	exec, err := Connect(":memory:")
	require.NoError(t, err)
	defer exec.Close()

	ctx := context.Background()
	require.NoError(t, SeedData(ctx, exec, 500))
	// seeding twice is a no-op
	require.NoError(t, SeedData(ctx, exec, 500))

	rows, err := exec.Execute(ctx, "SELECT COUNT(*) FROM test_users")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(500), rows[0][0])

	rows, err = exec.Execute(ctx, "SELECT user_id, username, email FROM test_users WHERE user_id = 42")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "42 | user_42 | user42@example.com", rows.Text())

	assert.NoError(t, exec.Ping(ctx))
}

func TestExecuteError(t *testing.T) {
	exec, err := Connect(":memory:")
	require.NoError(t, err)
	defer exec.Close()

	_, err = exec.Execute(context.Background(), "SELECT * FROM missing_table")
	assert.Error(t, err)
}

func TestRunEndpointAgainstSQLite(t *testing.T) {
	exec, err := Connect(filepath.Join(t.TempDir(), "bench", "test.db"))
	require.NoError(t, err)
	defer exec.Close()

	ctx := context.Background()
	require.NoError(t, SeedData(ctx, exec, 400))

	queries := conf.DefaultQueries("sqlite")
	queries = append(queries, bench.Query{Name: "bad", Body: "SELECT nope FROM test_users"})
	runner := bench.NewRunner(exec)
	res, series := runner.RunEndpoint(ctx, "Direct", queries, bench.RunParams{
		Iterations:      3,
		Delay:           time.Millisecond,
		DiagnosticFirst: true,
	})

	require.NoError(t, res.Err)
	require.Len(t, series, len(queries))
	for _, s := range series[:len(series)-1] {
		assert.NotEmpty(t, s.Plan, s.Query)
		assert.NoError(t, s.PlanErr, s.Query)
		st := res.Stats[s.Query]
		assert.Equal(t, 3, st.Count, s.Query)
		assert.LessOrEqual(t, st.Min, st.Mean)
	}
	assert.False(t, res.Stats["bad"].HasData())

	probe := runner.ProbeInvalidation(ctx, "Direct", queries[0], bench.RunParams{})
	assert.False(t, probe.Mutation.Failed())
	assert.NoError(t, probe.RestoreErr)

	rows, err := exec.Execute(ctx, "SELECT email FROM test_users WHERE user_id = 1")
	require.NoError(t, err)
	assert.Equal(t, "user1@example.com", rows.Text())
}
