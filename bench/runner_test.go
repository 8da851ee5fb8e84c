package bench

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testQuery = Query{
	Name:       "first_user",
	Body:       "SELECT * FROM test_users LIMIT 1",
	Diagnostic: "EXPLAIN SELECT * FROM test_users LIMIT 1",
}

func TestRunDiagnosticFirst(t *testing.T) {
	clock := newFakeClock()
	exec := newScriptedExec(clock).script(testQuery.Body, 100, 20, 22, 21)
	sleeper := &sleepRecorder{}
	runner := newTestRunner(exec, clock, sleeper)

	series := runner.Run(context.Background(), "direct", testQuery, RunParams{
		Iterations:      4,
		Delay:           100 * time.Millisecond,
		DiagnosticFirst: true,
	})

	require.Len(t, series.Results, 4)
	assert.Equal(t, []string{
		testQuery.Diagnostic,
		testQuery.Body, testQuery.Body, testQuery.Body, testQuery.Body,
	}, exec.calls)
	assert.Equal(t, "plan line", series.Plan)
	assert.NoError(t, series.PlanErr)
	assert.Equal(t, "direct", series.Endpoint)
	assert.Equal(t, "first_user", series.Query)
	for i, want := range []float64{100, 20, 22, 21} {
		assert.InDelta(t, want, series.Results[i].Millis(), 1e-9)
	}
	// one pause after the diagnostic run, then between trials only
	assert.Len(t, sleeper.calls, 4)
	for _, d := range sleeper.calls {
		assert.Equal(t, 100*time.Millisecond, d)
	}
}

func TestRunWithoutDiagnostic(t *testing.T) {
	clock := newFakeClock()
	exec := newScriptedExec(clock).script(testQuery.Body, 5, 4, 3)
	sleeper := &sleepRecorder{}
	runner := newTestRunner(exec, clock, sleeper)

	series := runner.Run(context.Background(), "proxy", testQuery, RunParams{Iterations: 3, Delay: time.Millisecond})

	assert.Equal(t, []string{testQuery.Body, testQuery.Body, testQuery.Body}, exec.calls)
	assert.Empty(t, series.Plan)
	assert.Len(t, sleeper.calls, 2)
}

func TestRunSkipsMissingDiagnostic(t *testing.T) {
	clock := newFakeClock()
	q := Query{Name: "plain", Body: "SELECT 1"}
	exec := newScriptedExec(clock).script(q.Body, 1, 1)
	runner := newTestRunner(exec, clock, &sleepRecorder{})

	series := runner.Run(context.Background(), "direct", q, RunParams{Iterations: 2, DiagnosticFirst: true})

	assert.Equal(t, []string{"SELECT 1", "SELECT 1"}, exec.calls)
	assert.Empty(t, series.Plan)
}

func TestRunZeroDelayNeverSleeps(t *testing.T) {
	clock := newFakeClock()
	exec := newScriptedExec(clock).script(testQuery.Body, 1, 1, 1)
	sleeper := &sleepRecorder{}
	runner := newTestRunner(exec, clock, sleeper)

	runner.Run(context.Background(), "direct", testQuery, RunParams{Iterations: 3, DiagnosticFirst: true})

	assert.Empty(t, sleeper.calls)
}

func TestRunContinuesAfterFailure(t *testing.T) {
	clock := newFakeClock()
	exec := newScriptedExec(clock).script(testQuery.Body, 50, failed, 10, failed, 12)
	runner := newTestRunner(exec, clock, &sleepRecorder{})

	series := runner.Run(context.Background(), "direct", testQuery, RunParams{Iterations: 5})

	require.Len(t, series.Results, 5)
	assert.Equal(t, 2, series.Failures())
	assert.True(t, series.Results[1].Failed())
	assert.True(t, series.Results[3].Failed())
	assert.InDelta(t, 12, series.Results[4].Millis(), 1e-9)
	assert.Len(t, exec.calls, 5, "one attempt per trial, no retries")
}

func TestRunDiagnosticFailureIsNotFatal(t *testing.T) {
	clock := newFakeClock()
	exec := newScriptedExec(clock).
		script(testQuery.Diagnostic, failed).
		script(testQuery.Body, 8, 7)
	runner := newTestRunner(exec, clock, &sleepRecorder{})

	series := runner.Run(context.Background(), "direct", testQuery, RunParams{Iterations: 2, DiagnosticFirst: true})

	assert.Error(t, series.PlanErr)
	assert.Empty(t, series.Plan)
	assert.Equal(t, 0, series.Failures())
	assert.Len(t, series.Results, 2)
}

func TestRunEndpointKeepsOrder(t *testing.T) {
	clock := newFakeClock()
	queries := []Query{
		{Name: "b_query", Body: "SELECT 2"},
		{Name: "a_query", Body: "SELECT 1"},
	}
	exec := newScriptedExec(clock).
		script("SELECT 2", 30, 10).
		script("SELECT 1", 40, 20)
	sleeper := &sleepRecorder{}
	runner := newTestRunner(exec, clock, sleeper)

	res, series := runner.RunEndpoint(context.Background(), "Direct", queries, RunParams{Iterations: 2, Delay: time.Millisecond})

	require.NoError(t, res.Err)
	assert.Equal(t, []string{"b_query", "a_query"}, res.Queries)
	require.Len(t, series, 2)
	assert.Equal(t, "b_query", series[0].Query)
	assert.InDelta(t, 10, res.Stats["b_query"].Min, 1e-9)
	assert.InDelta(t, 30, res.Stats["a_query"].Mean, 1e-9)
	// one pause inside each series and one between the two queries
	assert.Len(t, sleeper.calls, 3)
}

func TestRunEndpointAbortsOnLostConnection(t *testing.T) {
	clock := newFakeClock()
	queries := []Query{
		{Name: "first", Body: "SELECT 1"},
		{Name: "second", Body: "SELECT 2"},
	}
	exec := &pingingExec{
		scriptedExec: newScriptedExec(clock).script("SELECT 1", 5, failed),
		pingErr:      errors.New("connection refused"),
	}
	runner := newTestRunner(exec, clock, &sleepRecorder{})

	res, series := runner.RunEndpoint(context.Background(), "Through Proxy", queries, RunParams{Iterations: 2})

	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, ErrConnectionLost))
	assert.Equal(t, 1, exec.pings)
	assert.Len(t, series, 1)
	assert.Equal(t, []string{"first", "second"}, res.Queries)
	_, ok := res.Stats["second"]
	assert.False(t, ok)
	assert.NotContains(t, exec.calls, "SELECT 2")
}

func TestRunEndpointHealthyPingContinues(t *testing.T) {
	clock := newFakeClock()
	queries := []Query{
		{Name: "first", Body: "SELECT 1"},
		{Name: "second", Body: "SELECT 2"},
	}
	exec := &pingingExec{scriptedExec: newScriptedExec(clock).script("SELECT 1", failed, failed)}
	runner := newTestRunner(exec, clock, &sleepRecorder{})

	res, series := runner.RunEndpoint(context.Background(), "Direct", queries, RunParams{Iterations: 2})

	assert.NoError(t, res.Err)
	assert.Len(t, series, 2)
	assert.False(t, res.Stats["first"].HasData())
	assert.True(t, res.Stats["second"].HasData())
}
