package bench

import (
	"fmt"
	"time"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads time.Now, which carries a monotonic reading.
var SystemClock Clock = systemClock{}

// Measure times a single invocation of work. Errors and panics raised by
// work are captured into the result instead of being propagated.
func Measure(clock Clock, work func() error) (res QueryResult) {
	start := clock.Now()
	res.At = start
	defer func() {
		if p := recover(); p != nil {
			res.Duration = 0
			res.Err = fmt.Errorf("%w: panic: %v", ErrTrialFailed, p)
		}
	}()
	err := work()
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrTrialFailed, err)
		return res
	}
	res.Duration = clock.Now().Sub(start)
	return res
}
