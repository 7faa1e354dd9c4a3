package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// UnitOutcome records how a single order fared. Err is nil on success;
// a non-nil Err on any outcome means the run as a whole aborted.
type UnitOutcome struct {
	OrderID string
	Quote   Quote
	Err     error
}

// RunResult is the measurement of one full run: the worker count it was
// configured with, wall-clock elapsed time from first submission to
// last completion, and the per-order outcomes. Read-only once returned.
type RunResult struct {
	ID       uuid.UUID
	Workers  int
	Elapsed  time.Duration
	Outcomes []UnitOutcome
}

// Succeeded reports whether every order completed both stages cleanly.
func (r RunResult) Succeeded() bool {
	for _, out := range r.Outcomes {
		if out.Err != nil {
			return false
		}
	}
	return true
}

// Pipeline executes a fixed workload through the serial and parallel
// stages. The serial gate and the parallel slot pool are created fresh
// inside every Run call, so a single Pipeline value can drive all
// worker counts in a sweep without cross-run interference.
type Pipeline struct {
	conf config
}

// New creates a pipeline with the given options. Defaults: 2ms serial
// delay, 8ms parallel delay, 5% discount, 10% tax, shipping base 3000.
func New(opts ...Option) *Pipeline {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Pipeline{conf: cfg}
}

// Run drains the workload on a pool of exactly max(workers, 1) worker
// goroutines pulling orders from a task channel. Each order's two
// stages run strictly in sequence on its worker, so a waiting order's
// serial stage cannot make progress while every slot is occupied by a
// blocking parallel delay: the serial fraction stays on the measured
// critical path instead of pipelining for free behind other orders'
// parallel work. Run blocks until the workload is fully drained and
// returns the measured result.
//
// A fatal invariant violation in any task cancels the remaining tasks
// and propagates as the returned error; the partial outcomes are still
// reported, with the aborted orders carrying their cancellation error
// so nothing is falsely recorded as successful. All run-scoped
// resources are released on every exit path.
func (p *Pipeline) Run(ctx context.Context, orders []Order, workers int) (RunResult, error) {
	workers = max(workers, 1)
	res := RunResult{ID: uuid.New(), Workers: workers}

	if len(orders) == 0 {
		res.Outcomes = []UnitOutcome{}
		return res, nil
	}

	serial := newSerialStage(p.conf.serialDelay, p.conf.probe)
	parallel := newParallelStage(workers, p.conf.parallelDelay, p.conf.pricing, p.conf.probe)

	g, gctx := errgroup.WithContext(ctx)
	taskChan := make(chan Order, workers)
	outcomes := make(chan UnitOutcome, len(orders))

	start := time.Now()

	numWorkers := min(workers, len(orders))
	for range numWorkers {
		g.Go(func() error {
			for {
				select {
				case order, ok := <-taskChan:
					if !ok {
						return nil
					}
					if p.conf.rateLimiter != nil {
						if err := p.conf.rateLimiter.Wait(gctx); err != nil {
							// The order was already dequeued; report it
							// rather than dropping it from the outcome list.
							outcomes <- UnitOutcome{OrderID: order.ID, Err: err}
							return err
						}
					}
					out := processOrder(gctx, serial, parallel, order)
					outcomes <- out
					if out.Err != nil {
						return out.Err
					}
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		})
	}

	g.Go(func() error {
		defer close(taskChan)
		for _, order := range orders {
			select {
			case taskChan <- order:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	err := g.Wait()
	res.Elapsed = time.Since(start)

	close(outcomes)
	for out := range outcomes {
		res.Outcomes = append(res.Outcomes, out)
	}
	return res, err
}

// processOrder runs both stages for one order. Panics in stage code are
// converted to errors so a single order cannot crash the whole process.
func processOrder(ctx context.Context, serial *serialStage, parallel *parallelStage, order Order) (out UnitOutcome) {
	out = UnitOutcome{OrderID: order.ID}
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			out.Err = fmt.Errorf("order %s panic: %v\nstack trace:\n%s", order.ID, r, buf[:n])
		}
	}()

	if err := serial.run(ctx, order); err != nil {
		out.Err = err
		return out
	}

	q, err := parallel.run(ctx, order)
	out.Quote = q
	out.Err = err
	return out
}

// ExecuteRun is the blocking convenience entry point for callers that
// only need the timing: it runs the workload once with the given worker
// count and returns the elapsed wall-clock duration.
func ExecuteRun(orders []Order, workers int, opts ...Option) (time.Duration, error) {
	res, err := New(opts...).Run(context.Background(), orders, workers)
	return res.Elapsed, err
}
