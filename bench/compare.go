package bench

import "fmt"

const (
	WorthItThreshold = 20.0
	ModestThreshold  = 5.0

	// MinConfidentTrials is the successful trial count below which a row is
	// flagged as a small sample. The flag does not alter any classification.
	MinConfidentTrials = 5
)

type Winner int

const (
	WinnerTie Winner = iota
	WinnerA
	WinnerB
)

func (w Winner) String() string {
	switch w {
	case WinnerA:
		return "A"
	case WinnerB:
		return "B"
	default:
		return "tie"
	}
}

func (w Winner) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

type Recommendation int

const (
	NotWorthIt Recommendation = iota
	Modest
	WorthIt
)

func (r Recommendation) String() string {
	switch r {
	case WorthIt:
		return "worth it"
	case Modest:
		return "modest"
	default:
		return "not worth it"
	}
}

func (r Recommendation) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// EndpointResults is everything one endpoint phase produced. Queries keeps
// the configured order, including queries the phase never reached.
type EndpointResults struct {
	Label   string
	Queries []string
	Stats   map[string]Statistics
	Err     error
}

type ComparisonRow struct {
	Query   string
	A       Statistics
	B       Statistics
	SignalA CacheSignal
	SignalB CacheSignal
	Delta   float64
	Percent float64
	Winner  Winner
	NoData  bool
}

// Totals are unweighted means across the queries with data on both sides.
type Totals struct {
	Queries         int     `json:"queries"`
	MeanA           float64 `json:"meanAMs"`
	MeanB           float64 `json:"meanBMs"`
	MinA            float64 `json:"minAMs"`
	MinB            float64 `json:"minBMs"`
	Delta           float64 `json:"deltaMs"`
	Percent         float64 `json:"percent"`
	ImprovementA    float64 `json:"improvementA"`
	ImprovementB    float64 `json:"improvementB"`
	BestDiffPercent float64 `json:"bestDiffPercent"`
}

// Report is the result of one comparison run. RunID is assigned by the
// caller; Compare leaves it empty.
type Report struct {
	RunID          string
	LabelA         string
	LabelB         string
	Rows           []ComparisonRow
	Totals         Totals
	Recommendation Recommendation
	Notes          []string
}

func compareRow(name string, a, b Statistics) ComparisonRow {
	row := ComparisonRow{Query: name, A: a, B: b}
	if !a.HasData() || !b.HasData() {
		row.NoData = true
		return row
	}
	row.SignalA = Detect(a)
	row.SignalB = Detect(b)
	row.Delta = b.Mean - a.Mean
	if a.Mean > 0 {
		row.Percent = 100 * (b.Mean/a.Mean - 1)
	}
	switch diff := row.SignalA.ImprovementPercent - row.SignalB.ImprovementPercent; {
	case diff > WinnerMargin:
		row.Winner = WinnerA
	case -diff > WinnerMargin:
		row.Winner = WinnerB
	default:
		row.Winner = WinnerTie
	}
	return row
}

func rowOrder(a, b EndpointResults) []string {
	seen := make(map[string]bool, len(a.Queries)+len(b.Queries))
	var order []string
	for _, list := range [][]string{a.Queries, b.Queries} {
		for _, name := range list {
			if !seen[name] {
				seen[name] = true
				order = append(order, name)
			}
		}
	}
	return order
}

// Compare joins the statistics of both endpoints per query. Queries with no
// data on either side stay in the report but not in the totals.
func Compare(a, b EndpointResults) Report {
	rep := Report{
		LabelA: a.Label,
		LabelB: b.Label,
	}
	for _, ep := range []EndpointResults{a, b} {
		if ep.Err != nil {
			rep.Notes = append(rep.Notes, fmt.Sprintf("%s: %v", ep.Label, ep.Err))
		}
	}

	var t Totals
	for _, name := range rowOrder(a, b) {
		row := compareRow(name, a.Stats[name], b.Stats[name])
		rep.Rows = append(rep.Rows, row)
		if row.NoData {
			continue
		}
		if row.A.Count < MinConfidentTrials || row.B.Count < MinConfidentTrials {
			rep.Notes = append(rep.Notes, fmt.Sprintf(
				"%s: small sample (%d/%d successful trials), cache classification may be noisy",
				name, row.A.Count, row.B.Count))
		}
		t.Queries++
		t.MeanA += row.A.Mean
		t.MeanB += row.B.Mean
		t.MinA += row.A.Min
		t.MinB += row.B.Min
		t.Delta += row.Delta
		t.Percent += row.Percent
		t.ImprovementA += row.SignalA.ImprovementPercent
		t.ImprovementB += row.SignalB.ImprovementPercent
	}

	if t.Queries > 0 {
		n := float64(t.Queries)
		t.MeanA /= n
		t.MeanB /= n
		t.MinA /= n
		t.MinB /= n
		t.Delta /= n
		t.Percent /= n
		t.ImprovementA /= n
		t.ImprovementB /= n
		t.BestDiffPercent = gain(t.MinA, t.MinB)
	}
	rep.Totals = t
	rep.Recommendation = recommend(t)
	return rep
}

func recommend(t Totals) Recommendation {
	if t.Queries == 0 || t.MinA <= 0 {
		return NotWorthIt
	}
	switch {
	case t.BestDiffPercent > WorthItThreshold:
		return WorthIt
	case t.BestDiffPercent > ModestThreshold:
		return Modest
	default:
		return NotWorthIt
	}
}
