package pipeline

import "fmt"

// Item is a single order line. Price is the unit price in minor
// currency units (cents); Quantity is positive. Items are immutable
// once created.
type Item struct {
	ID       string
	Price    int64
	Quantity int64
}

// Order is one unit of pipeline work: an identifier and a non-empty
// sequence of items. Orders are immutable and safely shared by every
// run in a sweep, since no stage mutates them.
type Order struct {
	ID    string
	Items []Item
}

// BuildWorkload returns exactly count orders, each carrying the same
// fixed set of three items with identifiers derived from the order's
// position. It is a pure function of count: calling it twice yields
// equal workloads, so every worker-count configuration in a sweep is
// measured against identical data.
func BuildWorkload(count int) []Order {
	orders := make([]Order, 0, count)
	for i := range count {
		id := fmt.Sprintf("order-%04d", i+1)
		orders = append(orders, Order{
			ID: id,
			Items: []Item{
				{ID: id + "/book", Price: 2500, Quantity: 2},
				{ID: id + "/pen", Price: 300, Quantity: 10},
				{ID: id + "/lamp", Price: 2000, Quantity: 1},
			},
		})
	}
	return orders
}
