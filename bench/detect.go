package bench

// Heuristic thresholds in percentage points. They are not derived from any
// significance test.
const (
	StrongThreshold   = 30.0
	ModerateThreshold = 15.0
	WinnerMargin      = 10.0
)

type Strength int

const (
	StrengthNone Strength = iota
	StrengthWeak
	StrengthModerate
	StrengthStrong
)

func (s Strength) String() string {
	switch s {
	case StrengthWeak:
		return "weak"
	case StrengthModerate:
		return "moderate"
	case StrengthStrong:
		return "strong"
	default:
		return "none"
	}
}

func (s Strength) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CacheSignal is the first-vs-best latency drop of a series.
type CacheSignal struct {
	ImprovementPercent float64
	Strength           Strength
}

// Detect infers a caching effect from how much faster the best trial was
// than the cold one.
func Detect(s Statistics) CacheSignal {
	if !s.HasData() || s.First.Failed || s.First.Millis <= 0 {
		return CacheSignal{}
	}
	improvement := gain(s.First.Millis, s.Min)
	return CacheSignal{
		ImprovementPercent: improvement,
		Strength:           classify(improvement),
	}
}

// gain is the relative drop from slow to fast, in percent of slow.
func gain(slow, fast float64) float64 {
	if slow <= 0 {
		return 0
	}
	return 100 * (slow - fast) / slow
}

func classify(improvement float64) Strength {
	switch {
	case improvement > StrongThreshold:
		return StrengthStrong
	case improvement > ModerateThreshold:
		return StrengthModerate
	case improvement > 0:
		return StrengthWeak
	default:
		return StrengthNone
	}
}
