package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPriceOrder_WorkedExample(t *testing.T) {
	// subtotal 10000, 5% discount -> 9500, 10% tax -> 10450,
	// shipping max(0, 3000-104) = 2896, combined 13346.
	order := BuildWorkload(1)[0]
	pricing := Pricing{DiscountPercent: 5, TaxPercent: 10, ShippingBase: 3000}

	q := priceOrder(order, pricing)

	if q.Subtotal != 10000 {
		t.Errorf("subtotal: expected 10000, got %d", q.Subtotal)
	}
	if q.Discounted != 9500 {
		t.Errorf("discounted: expected 9500, got %d", q.Discounted)
	}
	if q.Taxed != 10450 {
		t.Errorf("taxed: expected 10450, got %d", q.Taxed)
	}
	if q.Shipping != 2896 {
		t.Errorf("shipping: expected 2896, got %d", q.Shipping)
	}
	if q.Combined != 13346 {
		t.Errorf("combined: expected 13346, got %d", q.Combined)
	}
}

func TestPriceOrder_ShippingFloorsAtZero(t *testing.T) {
	order := Order{
		ID:    "order-heavy",
		Items: []Item{{ID: "bulk", Price: 100_000, Quantity: 10}},
	}
	pricing := Pricing{DiscountPercent: 0, TaxPercent: 10, ShippingBase: 3000}

	q := priceOrder(order, pricing)

	if q.Shipping != 0 {
		t.Errorf("expected shipping floored at 0, got %d", q.Shipping)
	}
	if q.Combined < 0 {
		t.Errorf("combined must stay non-negative, got %d", q.Combined)
	}
}

func TestParallelStage_NegativeCombinedIsInvariantViolation(t *testing.T) {
	// A discount above 100% drives the taxed total negative, which the
	// post-condition must catch.
	stage := newParallelStage(2, 0, Pricing{DiscountPercent: 200, TaxPercent: 10, ShippingBase: 0}, StageProbe{})

	_, err := stage.run(context.Background(), BuildWorkload(1)[0])
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("expected ErrInvariantViolation, got %v", err)
	}
}

func TestParallelStage_ConcurrencyBound(t *testing.T) {
	workers := 4
	var active, maxActive atomic.Int32
	stage := newParallelStage(workers, 5*time.Millisecond,
		Pricing{DiscountPercent: 5, TaxPercent: 10, ShippingBase: 3000},
		StageProbe{
			ParallelEnter: func(Order) {
				current := active.Add(1)
				for {
					seen := maxActive.Load()
					if current <= seen || maxActive.CompareAndSwap(seen, current) {
						break
					}
				}
			},
			ParallelExit: func(Order) { active.Add(-1) },
		})

	orders := BuildWorkload(40)
	var wg sync.WaitGroup
	for _, order := range orders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := stage.run(context.Background(), order); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := maxActive.Load(); got > int32(workers) {
		t.Errorf("expected at most %d orders in the parallel stage, observed %d", workers, got)
	}
	if maxActive.Load() < 2 {
		t.Errorf("expected actual parallelism, observed max %d", maxActive.Load())
	}
}

func TestParallelStage_SlotHeldForFullDelay(t *testing.T) {
	// One slot, two orders: the second cannot start until the first has
	// slept its full delay, so total time is at least 2x the delay.
	delay := 20 * time.Millisecond
	stage := newParallelStage(1, delay,
		Pricing{DiscountPercent: 5, TaxPercent: 10, ShippingBase: 3000}, StageProbe{})

	orders := BuildWorkload(2)
	start := time.Now()

	var wg sync.WaitGroup
	for _, order := range orders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := stage.run(context.Background(), order); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if elapsed := time.Since(start); elapsed < 2*delay {
		t.Errorf("expected at least %v with a single slot, got %v", 2*delay, elapsed)
	}
}
