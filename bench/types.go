package bench

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type ConnConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// Query is one named statement under test. Mutation and Restore are only
// used by the invalidation probe.
type Query struct {
	Name       string
	Body       string
	Diagnostic string
	Mutation   string
	Restore    string
}

type RunParams struct {
	Iterations      int
	Delay           time.Duration // pause between trials, never after the last one
	DiagnosticFirst bool
}

// QueryResult is the outcome of a single trial. A non-nil Err marks the
// trial as failed and Duration is then meaningless.
type QueryResult struct {
	At       time.Time
	Duration time.Duration
	Err      error
}

func (r QueryResult) Failed() bool {
	return r.Err != nil
}

func (r QueryResult) Millis() float64 {
	return float64(r.Duration) / float64(time.Millisecond)
}

// TrialSeries holds the ordered trials of one query against one endpoint.
// Results[0] is the cold run.
type TrialSeries struct {
	Endpoint string
	Query    string
	Plan     string
	PlanErr  error
	Results  []QueryResult
}

func (s TrialSeries) Failures() int {
	var n int
	for _, r := range s.Results {
		if r.Failed() {
			n++
		}
	}
	return n
}

// Rows is a fully drained result set.
type Rows [][]any

// Text renders rows one per line, columns separated by " | ".
func (r Rows) Text() string {
	var sb strings.Builder
	for i, row := range r {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for j, v := range row {
			if j > 0 {
				sb.WriteString(" | ")
			}
			switch t := v.(type) {
			case []byte:
				sb.Write(t)
			case nil:
				sb.WriteString("NULL")
			default:
				fmt.Fprint(&sb, t)
			}
		}
	}
	return sb.String()
}

// QueryExecutor runs a literal statement against an already connected
// endpoint and drains its result.
type QueryExecutor interface {
	Execute(ctx context.Context, statement string) (Rows, error)
}

// Pinger is implemented by executors able to check that their connection
// is still alive.
type Pinger interface {
	Ping(ctx context.Context) error
}
