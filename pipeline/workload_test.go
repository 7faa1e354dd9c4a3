package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWorkload_Deterministic(t *testing.T) {
	first := BuildWorkload(50)
	second := BuildWorkload(50)

	require.Len(t, first, 50)
	assert.Equal(t, first, second)
}

func TestBuildWorkload_ZeroCount(t *testing.T) {
	assert.Empty(t, BuildWorkload(0))
}

func TestBuildWorkload_OrderContent(t *testing.T) {
	orders := BuildWorkload(3)
	require.Len(t, orders, 3)

	for _, order := range orders {
		assert.NotEmpty(t, order.ID)
		require.Len(t, order.Items, 3)
		for _, item := range order.Items {
			assert.NotEmpty(t, item.ID)
			assert.Positive(t, item.Quantity)
			assert.Positive(t, item.Price)
		}
	}

	// Identifiers derive from position, so every order is distinct.
	assert.NotEqual(t, orders[0].ID, orders[1].ID)
	assert.Equal(t, "order-0001", orders[0].ID)
}

func TestBuildWorkload_SubtotalMatchesPricingExample(t *testing.T) {
	orders := BuildWorkload(1)
	require.Len(t, orders, 1)

	var subtotal int64
	for _, item := range orders[0].Items {
		subtotal += item.Price * item.Quantity
	}
	assert.Equal(t, int64(10000), subtotal)
}
