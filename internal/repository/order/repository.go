package order

import (
	"context"

	"storefront-backend/internal/domain"
)

// CheckoutInput carries the shipping details for a new order.
type CheckoutInput struct {
	ShippingAddress string
	Phone           string
	Notes           string
}

// Filter narrows List results.
type Filter struct {
	UserID *int64
	Status *domain.OrderStatus
	Limit  int
	Offset int
}

type Repository interface {
	// CreateFromCart converts the user's cart into a pending order in one
	// transaction: order row, order lines copying the cart price snapshots,
	// stock decrement per line, cart cleared. Any failure rolls back all of
	// it.
	CreateFromCart(ctx context.Context, userID int64, in CheckoutInput) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, f Filter) ([]domain.Order, error)
	// UpdateStatus applies a forward transition (pending->paid->shipped->
	// delivered), stamping the entry timestamp exactly once. Cancellation
	// goes through Cancel instead.
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
	// Cancel restores stock for every line and marks the order cancelled,
	// atomically. Valid from pending and paid only.
	Cancel(ctx context.Context, id int64) (*domain.Order, error)
	// Delete hard-deletes a pending order. Anything later fails with
	// domain.ErrDeleteNotAllowed.
	Delete(ctx context.Context, id int64) error
}
