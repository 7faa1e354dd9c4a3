// Package pipeline models a two-stage order-processing pipeline and
// measures how its throughput scales as parallel workers are added.
//
// Every order passes through a strictly serialized first stage (at most
// one order at a time across the whole run) followed by a parallelizable
// second stage bounded by a fixed pool of worker slots. Runs are timed
// wall-clock from first submission to last completion so that measured
// speedup can be compared against the Amdahl's-Law prediction
// S(N) = 1 / ((1-P) + P/N).
//
// # Basic Usage
//
//	workload := pipeline.BuildWorkload(100)
//	p := pipeline.New(
//	    pipeline.WithSerialDelay(2*time.Millisecond),
//	    pipeline.WithParallelDelay(8*time.Millisecond),
//	)
//	baseline, err := p.Run(ctx, workload, 1)
//	run4, err := p.Run(ctx, workload, 4)
//	rec, err := pipeline.BuildRecord(baseline, run4, 0.8)
//
// # Concurrency Model
//
// The serial gate and the parallel slot pool are created fresh inside
// every Run call, so one Pipeline value can drive an entire worker-count
// sweep without cross-run interference. Orders are drained by exactly
// max(workers, 1) pooled goroutines, each running an order's serial
// stage and then its parallel stage in strict sequence, with a
// capacity-1 gate enforcing run-wide mutual exclusion on the serial
// stage. The parallel-stage delay holds its pool slot for the full
// duration: the configured worker count is an enforced upper bound on
// stage-2 concurrency, not a cooperative hint.
//
// # Failure Model
//
// There is no retryable error class. An order reaching the serial stage
// with no items, or priced to a negative combined value, is an
// ErrInvariantViolation that aborts the whole run; invalid arguments to
// the speedup formulas are ErrInvalidParameter and are rejected before
// any timing work. Both are testable with errors.Is.
package pipeline
