package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/semaphore"
)

// parallelStage distributes the second stage across a fixed pool of
// execution slots. At most `workers` orders occupy the stage at once.
// The stage delay is a plain sleep that holds its slot for the full
// duration, so the worker count is an enforced upper bound on
// concurrency and not a cooperative hint; the model measures pool
// saturation, not scheduler artifacts.
type parallelStage struct {
	slots   *semaphore.Weighted
	delay   time.Duration
	pricing Pricing
	probe   StageProbe
}

func newParallelStage(workers int, delay time.Duration, pricing Pricing, probe StageProbe) *parallelStage {
	return &parallelStage{
		slots:   semaphore.NewWeighted(int64(max(workers, 1))),
		delay:   delay,
		pricing: pricing,
		probe:   probe,
	}
}

// Quote is the priced outcome of an order's parallel stage. All
// amounts are in minor currency units.
type Quote struct {
	OrderID    string
	Subtotal   int64
	Discounted int64
	Taxed      int64
	Shipping   int64
	Combined   int64
}

// run occupies one pool slot, performs the simulated stage latency and
// the pricing computation, and checks the non-negative post-condition
// on the combined value.
func (p *parallelStage) run(ctx context.Context, order Order) (Quote, error) {
	if err := p.slots.Acquire(ctx, 1); err != nil {
		return Quote{}, err
	}
	defer p.slots.Release(1)

	if p.probe.ParallelEnter != nil {
		p.probe.ParallelEnter(order)
	}
	if p.probe.ParallelExit != nil {
		defer p.probe.ParallelExit(order)
	}

	time.Sleep(p.delay) // blocking on purpose: the slot stays occupied

	q := priceOrder(order, p.pricing)
	if q.Combined < 0 {
		return Quote{}, fmt.Errorf("%w: order %s priced to negative combined value %d",
			ErrInvariantViolation, order.ID, q.Combined)
	}
	return q, nil
}

// priceOrder applies discount, tax and shipping to an order's item
// subtotal. Shipping decreases with the taxed total and floors at
// zero. Integer arithmetic throughout; fractions truncate.
func priceOrder(order Order, pr Pricing) Quote {
	var subtotal int64
	for _, it := range order.Items {
		subtotal += it.Price * it.Quantity
	}

	discounted := subtotal - subtotal*pr.DiscountPercent/100
	taxed := discounted + discounted*pr.TaxPercent/100
	shipping := max(pr.ShippingBase-taxed/100, 0)

	return Quote{
		OrderID:    order.ID,
		Subtotal:   subtotal,
		Discounted: discounted,
		Taxed:      taxed,
		Shipping:   shipping,
		Combined:   taxed + shipping,
	}
}
