package bench

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog/log"
)

// Sample is a positional entry of a series, kept even when the trial failed.
type Sample struct {
	Millis float64
	Failed bool
}

func sampleOf(r QueryResult) Sample {
	if r.Failed() {
		return Sample{Failed: true}
	}
	return Sample{Millis: r.Millis()}
}

// Statistics summarizes one TrialSeries. All latencies are in milliseconds.
// When Count is zero the derived fields are undefined and left at zero;
// check HasData before reading them.
type Statistics struct {
	Endpoint string
	Query    string
	Total    int
	Count    int
	Failed   int
	Mean     float64
	Min      float64
	Max      float64
	Median   float64
	P95      float64
	Stdev    float64
	First    Sample
	Last     Sample
}

func (s Statistics) HasData() bool {
	return s.Count > 0
}

// Summarize reduces a series, ignoring failed trials for the derived
// values. First and Last are taken from the raw series.
func Summarize(series TrialSeries) Statistics {
	st := Statistics{
		Endpoint: series.Endpoint,
		Query:    series.Query,
		Total:    len(series.Results),
	}
	if st.Total == 0 {
		return st
	}
	st.First = sampleOf(series.Results[0])
	st.Last = sampleOf(series.Results[st.Total-1])

	durations := make(stats.Float64Data, 0, st.Total)
	for _, r := range series.Results {
		if r.Failed() {
			st.Failed++
			continue
		}
		durations = append(durations, r.Millis())
	}
	st.Count = len(durations)
	if st.Count == 0 {
		return st
	}

	// errors below only occur on empty input, which is excluded above
	st.Min, _ = stats.Min(durations)
	st.Max, _ = stats.Max(durations)
	mean, _ := stats.Mean(durations)
	st.Mean = math.Min(math.Max(mean, st.Min), st.Max)
	st.Median, _ = stats.Median(durations)
	stdev, err := stats.StandardDeviation(durations)
	if err != nil {
		log.Debug().Err(err).Str("query", series.Query).Msg("failed to calculate standard deviation")
	}
	st.Stdev = stdev

	sorted := make([]float64, len(durations))
	copy(sorted, durations)
	sort.Float64s(sorted)
	st.P95 = pct(sorted, 95)

	return st
}

// pct is the nearest-rank percentile of an ascending slice.
func pct(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
