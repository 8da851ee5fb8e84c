package bench

import "errors"

var (
	ErrTrialFailed    = errors.New("trial failed")
	ErrConnectionLost = errors.New("connection lost")
	ErrNoData         = errors.New("no data")
	ErrInvalidConfig  = errors.New("invalid config")
)
