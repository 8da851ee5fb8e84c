package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Runner executes trials against one endpoint. Trials never run
// concurrently: the cold/warm ordering is the signal being measured.
type Runner struct {
	Exec  QueryExecutor
	Clock Clock
	Sleep func(time.Duration)
}

func NewRunner(exec QueryExecutor) *Runner {
	return &Runner{
		Exec:  exec,
		Clock: SystemClock,
		Sleep: time.Sleep,
	}
}

func (r *Runner) pause(d time.Duration) {
	if d > 0 {
		r.Sleep(d)
	}
}

// Run executes the optional diagnostic statement once and then the query
// body p.Iterations times in strict order, one attempt per trial.
func (r *Runner) Run(ctx context.Context, endpoint string, q Query, p RunParams) TrialSeries {
	series := TrialSeries{
		Endpoint: endpoint,
		Query:    q.Name,
		Results:  make([]QueryResult, 0, p.Iterations),
	}

	if p.DiagnosticFirst && q.Diagnostic != "" {
		rows, err := r.Exec.Execute(ctx, q.Diagnostic)
		if err != nil {
			series.PlanErr = err
			log.Warn().
				Err(err).
				Str("endpoint", endpoint).
				Str("query", q.Name).
				Msg("diagnostic run failed")
		} else {
			series.Plan = rows.Text()
		}
		r.pause(p.Delay)
	}

	for i := 0; i < p.Iterations; i++ {
		res := Measure(r.Clock, func() error {
			_, err := r.Exec.Execute(ctx, q.Body)
			return err
		})
		series.Results = append(series.Results, res)
		if res.Failed() {
			log.Warn().
				Err(res.Err).
				Str("endpoint", endpoint).
				Str("query", q.Name).
				Int("iteration", i+1).
				Msg("trial failed, continuing")
		} else {
			log.Debug().
				Str("endpoint", endpoint).
				Str("query", q.Name).
				Int("iteration", i+1).
				Float64("ms", res.Millis()).
				Msg("trial done")
		}
		if i < p.Iterations-1 {
			r.pause(p.Delay)
		}
	}
	return series
}

// RunEndpoint runs every query in order and summarizes each series. When a
// series has failures and the executor can be pinged, a failed ping aborts
// the phase; queries not yet run are left without statistics.
func (r *Runner) RunEndpoint(ctx context.Context, label string, queries []Query, p RunParams) (EndpointResults, []TrialSeries) {
	res := EndpointResults{
		Label:   label,
		Queries: make([]string, 0, len(queries)),
		Stats:   make(map[string]Statistics, len(queries)),
	}
	for _, q := range queries {
		res.Queries = append(res.Queries, q.Name)
	}

	allSeries := make([]TrialSeries, 0, len(queries))
	for i, q := range queries {
		series := r.Run(ctx, label, q, p)
		allSeries = append(allSeries, series)
		res.Stats[q.Name] = Summarize(series)

		if series.Failures() > 0 {
			if pinger, ok := r.Exec.(Pinger); ok {
				if err := pinger.Ping(ctx); err != nil {
					res.Err = fmt.Errorf("%w: %s after query %q: %w", ErrConnectionLost, label, q.Name, err)
					log.Error().
						Err(err).
						Str("endpoint", label).
						Str("query", q.Name).
						Int("skipped", len(queries)-i-1).
						Msg("connection lost, aborting phase")
					return res, allSeries
				}
			}
		}
		if i < len(queries)-1 {
			r.pause(p.Delay)
		}
	}
	return res, allSeries
}
