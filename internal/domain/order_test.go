package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := map[OrderStatus][]OrderStatus{
		OrderPending: {OrderPaid, OrderCancelled},
		OrderPaid:    {OrderShipped, OrderCancelled},
		OrderShipped: {OrderDelivered},
	}
	all := []OrderStatus{OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, ok := range allowed[from] {
				if ok == to {
					want = true
				}
			}
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransition_SameStateRejected(t *testing.T) {
	for _, s := range []OrderStatus{OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled} {
		assert.False(t, CanTransition(s, s), "%s -> %s must be rejected", s, s)
	}
}

func TestCancellable(t *testing.T) {
	assert.True(t, Cancellable(OrderPending))
	assert.True(t, Cancellable(OrderPaid))
	assert.False(t, Cancellable(OrderShipped))
	assert.False(t, Cancellable(OrderDelivered))
	assert.False(t, Cancellable(OrderCancelled))
}

func TestDeletable(t *testing.T) {
	assert.True(t, Deletable(OrderPending))
	for _, s := range []OrderStatus{OrderPaid, OrderShipped, OrderDelivered, OrderCancelled} {
		assert.False(t, Deletable(s), "%s must not be deletable", s)
	}
}

func TestParseOrderStatus(t *testing.T) {
	for _, s := range []string{"pending", "paid", "shipped", "delivered", "cancelled"} {
		parsed, ok := ParseOrderStatus(s)
		assert.True(t, ok, s)
		assert.Equal(t, OrderStatus(s), parsed)
	}

	for _, s := range []string{"", "PAID", "refunded", "canceled"} {
		_, ok := ParseOrderStatus(s)
		assert.False(t, ok, s)
	}
}
