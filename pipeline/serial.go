package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
)

// serialStage is the mandatory, non-parallelizable first stage. A gate
// of capacity 1 guarantees that at most one order is inside the
// critical section at any instant, regardless of how many orders are
// submitted concurrently. The gate is run-scoped: each Run builds a
// fresh one, never shared across runs in a sweep.
type serialStage struct {
	gate  *semaphore.Weighted
	delay time.Duration
	probe StageProbe
}

func newSerialStage(delay time.Duration, probe StageProbe) *serialStage {
	return &serialStage{
		gate:  semaphore.NewWeighted(1),
		delay: delay,
		probe: probe,
	}
}

// run takes one order through the critical section. The empty-items
// check happens before the gate is acquired: an order with no items is
// an impossible state and aborts the whole run rather than being
// retried.
func (s *serialStage) run(ctx context.Context, order Order) error {
	if len(order.Items) == 0 {
		return fmt.Errorf("%w: order %s entered serial stage with no items",
			ErrInvariantViolation, order.ID)
	}

	if err := s.gate.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.gate.Release(1)

	if s.probe.SerialEnter != nil {
		s.probe.SerialEnter(order)
	}
	if s.probe.SerialExit != nil {
		defer s.probe.SerialExit(order)
	}

	// One order at a time in here; the timer select suspends without
	// pinning an OS thread and keeps the wait cancellable.
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
