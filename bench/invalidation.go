package bench

import (
	"context"

	"github.com/rs/zerolog/log"
)

type Verdict int

const (
	VerdictInconclusive Verdict = iota
	VerdictNoCaching
	VerdictStale
	VerdictInvalidated
)

func (v Verdict) String() string {
	switch v {
	case VerdictNoCaching:
		return "no caching"
	case VerdictStale:
		return "cached, NOT invalidated"
	case VerdictInvalidated:
		return "cached and invalidated"
	default:
		return "inconclusive"
	}
}

func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// InvalidationResult holds the timed steps of one probe.
type InvalidationResult struct {
	Endpoint      string
	Query         string
	Cold          QueryResult
	Warm          QueryResult
	Mutation      QueryResult
	AfterMutation QueryResult
	Rewarm        QueryResult
	RestoreErr    error
	WarmGain      float64
	RewarmGain    float64
	Verdict       Verdict
}

// ProbeInvalidation checks that a write through the endpoint evicts the
// cached result of q.Body: cold read, warm read, mutation, read, read,
// then q.Restore if set.
func (r *Runner) ProbeInvalidation(ctx context.Context, endpoint string, q Query, p RunParams) InvalidationResult {
	res := InvalidationResult{Endpoint: endpoint, Query: q.Name}
	exec := func(stmt string) func() error {
		return func() error {
			_, err := r.Exec.Execute(ctx, stmt)
			return err
		}
	}

	steps := []struct {
		name string
		stmt string
		dst  *QueryResult
	}{
		{"cold", q.Body, &res.Cold},
		{"warm", q.Body, &res.Warm},
		{"mutation", q.Mutation, &res.Mutation},
		{"after mutation", q.Body, &res.AfterMutation},
		{"rewarm", q.Body, &res.Rewarm},
	}
	for i, s := range steps {
		if i > 0 {
			r.pause(p.Delay)
		}
		*s.dst = Measure(r.Clock, exec(s.stmt))
		if s.dst.Failed() {
			log.Warn().
				Err(s.dst.Err).
				Str("endpoint", endpoint).
				Str("query", q.Name).
				Str("step", s.name).
				Msg("probe step failed")
		}
	}

	if q.Restore != "" {
		if _, err := r.Exec.Execute(ctx, q.Restore); err != nil {
			res.RestoreErr = err
			log.Error().Err(err).Str("endpoint", endpoint).Str("query", q.Name).Msg("failed to restore mutated data")
		}
	}

	res.Verdict = res.judge()
	return res
}

func (res *InvalidationResult) judge() Verdict {
	for _, s := range []QueryResult{res.Cold, res.Warm, res.Mutation, res.AfterMutation, res.Rewarm} {
		if s.Failed() {
			return VerdictInconclusive
		}
	}
	res.WarmGain = gain(res.Cold.Millis(), res.Warm.Millis())
	res.RewarmGain = gain(res.AfterMutation.Millis(), res.Rewarm.Millis())
	if res.WarmGain <= ModerateThreshold {
		return VerdictNoCaching
	}
	if res.RewarmGain > ModerateThreshold {
		return VerdictInvalidated
	}
	return VerdictStale
}
