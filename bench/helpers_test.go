package bench

import (
	"context"
	"time"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(ms float64) {
	c.now = c.now.Add(msDuration(ms))
}

func msDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

// step is one scripted execution: it takes ms on the fake clock and fails
// with err when set.
type step struct {
	ms  float64
	err error
}

type scriptedExec struct {
	clock *fakeClock
	steps map[string][]step
	calls []string
}

func newScriptedExec(clock *fakeClock) *scriptedExec {
	return &scriptedExec{clock: clock, steps: map[string][]step{}}
}

func (e *scriptedExec) script(stmt string, ms ...float64) *scriptedExec {
	for _, v := range ms {
		if v == failed {
			e.steps[stmt] = append(e.steps[stmt], step{err: errBoom})
			continue
		}
		e.steps[stmt] = append(e.steps[stmt], step{ms: v})
	}
	return e
}

func (e *scriptedExec) Execute(ctx context.Context, statement string) (Rows, error) {
	e.calls = append(e.calls, statement)
	queue := e.steps[statement]
	if len(queue) == 0 {
		return Rows{{"plan line"}}, nil
	}
	s := queue[0]
	e.steps[statement] = queue[1:]
	e.clock.advance(s.ms)
	if s.err != nil {
		return nil, s.err
	}
	return Rows{{int64(1), "user_1"}}, nil
}

type pingingExec struct {
	*scriptedExec
	pingErr error
	pings   int
}

func (e *pingingExec) Ping(ctx context.Context) error {
	e.pings++
	return e.pingErr
}

type sleepRecorder struct {
	calls []time.Duration
}

func (s *sleepRecorder) sleep(d time.Duration) {
	s.calls = append(s.calls, d)
}

func newTestRunner(exec QueryExecutor, clock Clock, sleeper *sleepRecorder) *Runner {
	return &Runner{Exec: exec, Clock: clock, Sleep: sleeper.sleep}
}

// failed marks a failed trial in scripted and literal series.
const failed = -1.0

type boomError struct{}

func (boomError) Error() string { return "boom" }

var errBoom error = boomError{}

func seriesOf(endpoint, query string, ms ...float64) TrialSeries {
	s := TrialSeries{Endpoint: endpoint, Query: query}
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for _, v := range ms {
		if v == failed {
			s.Results = append(s.Results, QueryResult{At: at, Err: errBoom})
			continue
		}
		s.Results = append(s.Results, QueryResult{At: at, Duration: msDuration(v)})
		at = at.Add(msDuration(v))
	}
	return s
}

func endpointOf(label string, series ...TrialSeries) EndpointResults {
	res := EndpointResults{Label: label, Stats: map[string]Statistics{}}
	for _, s := range series {
		res.Queries = append(res.Queries, s.Query)
		res.Stats[s.Query] = Summarize(s)
	}
	return res
}
