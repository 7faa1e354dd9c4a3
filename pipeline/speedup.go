package pipeline

import (
	"fmt"
	"time"
)

// Record compares one measured run against the Amdahl prediction for
// its worker count. Derived and read-only.
type Record struct {
	Workers     int
	Measured    time.Duration
	Speedup     float64
	Theoretical float64
}

// TheoreticalSpeedup returns the Amdahl's-Law speedup bound
// S(N) = 1 / ((1-P) + P/N) for worker count N and parallel fraction P.
// N must be at least 1 and P strictly inside (0, 1).
func TheoreticalSpeedup(workers int, parallelFraction float64) (float64, error) {
	if workers < 1 {
		return 0, fmt.Errorf("%w: worker count %d, want >= 1", ErrInvalidParameter, workers)
	}
	if parallelFraction <= 0 || parallelFraction >= 1 {
		return 0, fmt.Errorf("%w: parallel fraction %g, want in (0,1)", ErrInvalidParameter, parallelFraction)
	}
	return 1 / ((1 - parallelFraction) + parallelFraction/float64(workers)), nil
}

// MeasuredSpeedup returns baseline / measured as a ratio. Both
// durations must be positive.
func MeasuredSpeedup(baseline, measured time.Duration) (float64, error) {
	if baseline <= 0 || measured <= 0 {
		return 0, fmt.Errorf("%w: durations must be positive (baseline %v, measured %v)",
			ErrInvalidParameter, baseline, measured)
	}
	return float64(baseline) / float64(measured), nil
}

// BuildRecord derives the measured-vs-theoretical comparison for one
// worker count from the baseline run and that count's run.
func BuildRecord(baseline, run RunResult, parallelFraction float64) (Record, error) {
	theoretical, err := TheoreticalSpeedup(run.Workers, parallelFraction)
	if err != nil {
		return Record{}, err
	}
	speedup, err := MeasuredSpeedup(baseline.Elapsed, run.Elapsed)
	if err != nil {
		return Record{}, err
	}
	return Record{
		Workers:     run.Workers,
		Measured:    run.Elapsed,
		Speedup:     speedup,
		Theoretical: theoretical,
	}, nil
}
