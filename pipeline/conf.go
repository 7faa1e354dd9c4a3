package pipeline

import (
	"time"

	"golang.org/x/time/rate"
)

// Option is a functional option for configuring a Pipeline.
type Option func(*config)

// Pricing holds the percentages applied during the parallel stage.
// All values operate on minor currency units.
type Pricing struct {
	DiscountPercent int64 // percent taken off the item subtotal
	TaxPercent      int64 // percent added to the discounted total
	ShippingBase    int64 // shipping = max(ShippingBase - taxed/100, 0)
}

// StageProbe receives stage entry and exit notifications. It exists
// for instrumentation: the concurrency-bound tests use it to observe
// how many orders occupy each stage at once. Nil fields are skipped.
type StageProbe struct {
	SerialEnter   func(Order)
	SerialExit    func(Order)
	ParallelEnter func(Order)
	ParallelExit  func(Order)
}

type config struct {
	serialDelay   time.Duration
	parallelDelay time.Duration
	pricing       Pricing
	rateLimiter   *rate.Limiter
	probe         StageProbe
}

func defaultConfig() config {
	return config{
		serialDelay:   2 * time.Millisecond,
		parallelDelay: 8 * time.Millisecond,
		pricing: Pricing{
			DiscountPercent: 5,
			TaxPercent:      10,
			ShippingBase:    3000,
		},
	}
}

// WithSerialDelay sets the fixed latency of the serial stage's critical
// section. If not specified, defaults to 2ms.
func WithSerialDelay(d time.Duration) Option {
	return func(cfg *config) {
		if d >= 0 {
			cfg.serialDelay = d
		}
	}
}

// WithParallelDelay sets the fixed latency of the parallel stage. The
// delay occupies a pool slot for its full duration. If not specified,
// defaults to 8ms.
func WithParallelDelay(d time.Duration) Option {
	return func(cfg *config) {
		if d >= 0 {
			cfg.parallelDelay = d
		}
	}
}

// WithPricing sets the discount, tax and shipping parameters applied in
// the parallel stage.
func WithPricing(p Pricing) Option {
	return func(cfg *config) {
		cfg.pricing = p
	}
}

// WithRateLimit throttles order submission across the whole run.
// ordersPerSecond specifies the maximum submission rate and burst the
// maximum number of orders admitted in a burst. If not specified, no
// rate limiting is applied.
func WithRateLimit(ordersPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if ordersPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(ordersPerSecond), burst)
		}
	}
}

// WithStageProbe installs instrumentation hooks fired on stage entry
// and exit. Probes run inside the stage's occupancy window, so they
// must be fast and must not block.
func WithStageProbe(p StageProbe) Option {
	return func(cfg *config) {
		cfg.probe = p
	}
}
