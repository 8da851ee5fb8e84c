package bench

import (
	"encoding/json"
	"fmt"
	"io"
)

// Reporter renders a finished Report.
type Reporter interface {
	Render(w io.Writer, r Report) error
}

func NewReporter(format string) (Reporter, error) {
	switch format {
	case "", "text":
		return TextReporter{}, nil
	case "json":
		return JSONReporter{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown report format %q", ErrInvalidConfig, format)
	}
}

type jsonStats struct {
	Total  int      `json:"total"`
	Count  int      `json:"count"`
	Failed int      `json:"failed"`
	Mean   *float64 `json:"meanMs"`
	Min    *float64 `json:"minMs"`
	Max    *float64 `json:"maxMs"`
	Median *float64 `json:"medianMs"`
	P95    *float64 `json:"p95Ms"`
	Stdev  *float64 `json:"stdevMs"`
	First  *float64 `json:"firstMs"`
	Last   *float64 `json:"lastMs"`
}

type jsonSignal struct {
	ImprovementPercent float64  `json:"improvementPercent"`
	Strength           Strength `json:"strength"`
}

type jsonRow struct {
	Query   string      `json:"query"`
	NoData  bool        `json:"noData"`
	A       jsonStats   `json:"a"`
	B       jsonStats   `json:"b"`
	SignalA *jsonSignal `json:"signalA,omitempty"`
	SignalB *jsonSignal `json:"signalB,omitempty"`
	Delta   *float64    `json:"deltaMs,omitempty"`
	Percent *float64    `json:"percent,omitempty"`
	Winner  *Winner     `json:"winner,omitempty"`
}

type jsonReport struct {
	RunID          string         `json:"runId"`
	LabelA         string         `json:"labelA"`
	LabelB         string         `json:"labelB"`
	Rows           []jsonRow      `json:"rows"`
	Totals         Totals         `json:"totals"`
	Recommendation Recommendation `json:"recommendation"`
	Notes          []string       `json:"notes"`
}

func ptr[T any](v T) *T { return &v }

func toJSONStats(s Statistics) jsonStats {
	js := jsonStats{Total: s.Total, Count: s.Count, Failed: s.Failed}
	if s.Total > 0 && !s.First.Failed {
		js.First = ptr(s.First.Millis)
	}
	if s.Total > 0 && !s.Last.Failed {
		js.Last = ptr(s.Last.Millis)
	}
	if !s.HasData() {
		return js
	}
	js.Mean = ptr(s.Mean)
	js.Min = ptr(s.Min)
	js.Max = ptr(s.Max)
	js.Median = ptr(s.Median)
	js.P95 = ptr(s.P95)
	js.Stdev = ptr(s.Stdev)
	return js
}

// JSONReporter writes the report as indented JSON; undefined statistics
// are rendered as null.
type JSONReporter struct{}

func (JSONReporter) Render(w io.Writer, r Report) error {
	out := jsonReport{
		RunID:          r.RunID,
		LabelA:         r.LabelA,
		LabelB:         r.LabelB,
		Rows:           make([]jsonRow, 0, len(r.Rows)),
		Totals:         r.Totals,
		Recommendation: r.Recommendation,
		Notes:          r.Notes,
	}
	if out.Notes == nil {
		out.Notes = []string{}
	}
	for _, row := range r.Rows {
		jr := jsonRow{
			Query:  row.Query,
			NoData: row.NoData,
			A:      toJSONStats(row.A),
			B:      toJSONStats(row.B),
		}
		if !row.NoData {
			jr.SignalA = &jsonSignal{row.SignalA.ImprovementPercent, row.SignalA.Strength}
			jr.SignalB = &jsonSignal{row.SignalB.ImprovementPercent, row.SignalB.Strength}
			jr.Delta = ptr(row.Delta)
			jr.Percent = ptr(row.Percent)
			jr.Winner = ptr(row.Winner)
		}
		out.Rows = append(out.Rows, jr)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
