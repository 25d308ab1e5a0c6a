package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus validates a raw status string.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// CanTransition reports whether an order may move from one status to another.
// The happy path is forward-only (pending -> paid -> shipped -> delivered);
// cancellation is reachable from pending and paid only. Re-entering the same
// status is rejected.
func CanTransition(from, to OrderStatus) bool {
	switch from {
	case OrderPending:
		return to == OrderPaid || to == OrderCancelled
	case OrderPaid:
		return to == OrderShipped || to == OrderCancelled
	case OrderShipped:
		return to == OrderDelivered
	default:
		// delivered and cancelled are terminal
		return false
	}
}

// Cancellable reports whether the status still allows cancellation.
func Cancellable(status OrderStatus) bool {
	return status == OrderPending || status == OrderPaid
}

// Deletable reports whether a hard delete is still permitted. Once an order
// has been paid the only valid exit is cancellation.
func Deletable(status OrderStatus) bool {
	return status == OrderPending
}

// Order is an immutable snapshot of a cart at checkout time plus shipping
// details and the lifecycle status.
type Order struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"userId"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	ShippingAddress string          `json:"shippingAddress"`
	Phone           string          `json:"phone"`
	Notes           string          `json:"notes,omitempty"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	ShippedAt       *time.Time      `json:"shippedAt,omitempty"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`

	Lines []OrderLine `json:"lines,omitempty"`
}

// OrderLine records one product within an order with the price that was
// current when the order was placed. Subtotal is always quantity x unit price
// and is never settable independently.
type OrderLine struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"orderId"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	CreatedAt   time.Time       `json:"createdAt"`
}
