package order

import (
	"context"
	"strings"

	"storefront-backend/internal/domain"
	orderrepo "storefront-backend/internal/repository/order"
)

// Service exposes the order aggregate: checkout from the cart, the status
// state machine, cancellation with stock reversal, and the pending-only hard
// delete. Every multi-row step is atomic inside the repository.
type Service struct {
	repo orderRepo
}

type orderRepo interface {
	CreateFromCart(ctx context.Context, userID int64, in orderrepo.CheckoutInput) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, f orderrepo.Filter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
	Cancel(ctx context.Context, id int64) (*domain.Order, error)
	Delete(ctx context.Context, id int64) error
}

func New(repo orderrepo.Repository) *Service {
	return &Service{repo: repo}
}

// CheckoutInput carries the order creation payload.
type CheckoutInput struct {
	ShippingAddress string `json:"shippingAddress"`
	Phone           string `json:"phone"`
	Notes           string `json:"notes"`
}

// Checkout converts the caller's cart into a pending order.
func (s *Service) Checkout(ctx context.Context, userID int64, in CheckoutInput) (*domain.Order, error) {
	address := strings.TrimSpace(in.ShippingAddress)
	if len(address) < 10 || len(address) > 500 {
		return nil, domain.NewValidationError("shippingAddress", "must be between 10 and 500 characters")
	}
	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		return nil, domain.NewValidationError("phone", "is required")
	}
	return s.repo.CreateFromCart(ctx, userID, orderrepo.CheckoutInput{
		ShippingAddress: address,
		Phone:           phone,
		Notes:           strings.TrimSpace(in.Notes),
	})
}

// Get returns an order with its lines. Clients only see their own orders;
// staff and admin see all.
func (s *Service) Get(ctx context.Context, userID int64, role domain.Role, id int64) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == domain.RoleClient && o.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// ListMine returns the caller's orders, newest first.
func (s *Service) ListMine(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.repo.List(ctx, orderrepo.Filter{UserID: &userID})
}

// ListAll returns all orders, optionally filtered by status.
func (s *Service) ListAll(ctx context.Context, status string, limit, offset int) ([]domain.Order, error) {
	f := orderrepo.Filter{Limit: limit, Offset: offset}
	if status != "" {
		parsed, ok := domain.ParseOrderStatus(status)
		if !ok {
			return nil, domain.ErrInvalidState
		}
		f.Status = &parsed
	}
	return s.repo.List(ctx, f)
}

// ChangeStatus moves an order through the state machine. A "cancelled"
// target runs the cancellation path so stock is restored.
func (s *Service) ChangeStatus(ctx context.Context, id int64, status string) (*domain.Order, error) {
	parsed, ok := domain.ParseOrderStatus(status)
	if !ok {
		return nil, domain.ErrInvalidState
	}
	if parsed == domain.OrderCancelled {
		return s.repo.Cancel(ctx, id)
	}
	return s.repo.UpdateStatus(ctx, id, parsed)
}

// Cancel restores stock and marks the order cancelled. Clients may cancel
// their own orders; staff and admin any.
func (s *Service) Cancel(ctx context.Context, userID int64, role domain.Role, id int64) (*domain.Order, error) {
	if role == domain.RoleClient {
		o, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if o.UserID != userID {
			return nil, domain.ErrNotFound
		}
	}
	return s.repo.Cancel(ctx, id)
}

// Delete hard-deletes a pending order.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
