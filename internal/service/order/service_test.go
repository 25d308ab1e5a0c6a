package order

import (
	"context"
	"errors"
	"testing"

	"storefront-backend/internal/domain"
	orderrepo "storefront-backend/internal/repository/order"
)

type stubOrderRepo struct {
	orders         map[int64]*domain.Order
	checkouts      []orderrepo.CheckoutInput
	cancelled      []int64
	statusUpdates  map[int64]domain.OrderStatus
	deleted        []int64
	lastListFilter orderrepo.Filter
}

func (s *stubOrderRepo) CreateFromCart(_ context.Context, userID int64, in orderrepo.CheckoutInput) (*domain.Order, error) {
	s.checkouts = append(s.checkouts, in)
	return &domain.Order{ID: 1, UserID: userID, Status: domain.OrderPending, ShippingAddress: in.ShippingAddress}, nil
}

func (s *stubOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *stubOrderRepo) List(_ context.Context, f orderrepo.Filter) ([]domain.Order, error) {
	s.lastListFilter = f
	return nil, nil
}

func (s *stubOrderRepo) UpdateStatus(_ context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if s.statusUpdates == nil {
		s.statusUpdates = map[int64]domain.OrderStatus{}
	}
	s.statusUpdates[id] = status
	return &domain.Order{ID: id, Status: status}, nil
}

func (s *stubOrderRepo) Cancel(_ context.Context, id int64) (*domain.Order, error) {
	s.cancelled = append(s.cancelled, id)
	return &domain.Order{ID: id, Status: domain.OrderCancelled}, nil
}

func (s *stubOrderRepo) Delete(_ context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func TestCheckout_Validation(t *testing.T) {
	svc := New(&stubOrderRepo{})
	ctx := context.Background()

	_, err := svc.Checkout(ctx, 1, CheckoutInput{ShippingAddress: "too short", Phone: "123"})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error for short address, got %v", err)
	}

	_, err = svc.Checkout(ctx, 1, CheckoutInput{ShippingAddress: "123 Long Enough Street, Springfield", Phone: " "})
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error for missing phone, got %v", err)
	}
}

func TestCheckout_TrimsInput(t *testing.T) {
	repo := &stubOrderRepo{}
	svc := New(repo)

	o, err := svc.Checkout(context.Background(), 7, CheckoutInput{
		ShippingAddress: "  123 Long Enough Street, Springfield  ",
		Phone:           " 555-0101 ",
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if o.Status != domain.OrderPending {
		t.Fatalf("expected pending order, got %s", o.Status)
	}
	if got := repo.checkouts[0]; got.ShippingAddress != "123 Long Enough Street, Springfield" || got.Phone != "555-0101" {
		t.Fatalf("expected trimmed input, got %+v", got)
	}
}

func TestGet_ClientsSeeOnlyOwnOrders(t *testing.T) {
	repo := &stubOrderRepo{orders: map[int64]*domain.Order{
		5: {ID: 5, UserID: 10},
	}}
	svc := New(repo)
	ctx := context.Background()

	if _, err := svc.Get(ctx, 10, domain.RoleClient, 5); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if _, err := svc.Get(ctx, 11, domain.RoleClient, 5); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign order, got %v", err)
	}
	if _, err := svc.Get(ctx, 11, domain.RoleStaff, 5); err != nil {
		t.Fatalf("staff read: %v", err)
	}
}

func TestListAll_RejectsUnknownStatus(t *testing.T) {
	svc := New(&stubOrderRepo{})
	if _, err := svc.ListAll(context.Background(), "refunded", 0, 0); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestListAll_PassesFilter(t *testing.T) {
	repo := &stubOrderRepo{}
	svc := New(repo)

	if _, err := svc.ListAll(context.Background(), "paid", 20, 40); err != nil {
		t.Fatalf("list: %v", err)
	}
	f := repo.lastListFilter
	if f.Status == nil || *f.Status != domain.OrderPaid || f.Limit != 20 || f.Offset != 40 {
		t.Fatalf("unexpected filter %+v", f)
	}
}

func TestChangeStatus_CancelledRoutesThroughCancel(t *testing.T) {
	repo := &stubOrderRepo{}
	svc := New(repo)
	ctx := context.Background()

	if _, err := svc.ChangeStatus(ctx, 3, "cancelled"); err != nil {
		t.Fatalf("change status: %v", err)
	}
	if len(repo.cancelled) != 1 || repo.cancelled[0] != 3 {
		t.Fatalf("expected Cancel path, got %v", repo.cancelled)
	}
	if len(repo.statusUpdates) != 0 {
		t.Fatalf("UpdateStatus must not run for cancellation, got %v", repo.statusUpdates)
	}

	if _, err := svc.ChangeStatus(ctx, 3, "paid"); err != nil {
		t.Fatalf("change status: %v", err)
	}
	if repo.statusUpdates[3] != domain.OrderPaid {
		t.Fatalf("expected paid update, got %v", repo.statusUpdates)
	}

	if _, err := svc.ChangeStatus(ctx, 3, "bogus"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestCancel_ClientOwnershipCheck(t *testing.T) {
	repo := &stubOrderRepo{orders: map[int64]*domain.Order{
		5: {ID: 5, UserID: 10, Status: domain.OrderPending},
	}}
	svc := New(repo)
	ctx := context.Background()

	if _, err := svc.Cancel(ctx, 11, domain.RoleClient, 5); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign cancel, got %v", err)
	}
	if len(repo.cancelled) != 0 {
		t.Fatal("cancel must not reach the repository for foreign orders")
	}

	if _, err := svc.Cancel(ctx, 10, domain.RoleClient, 5); err != nil {
		t.Fatalf("owner cancel: %v", err)
	}
	if _, err := svc.Cancel(ctx, 99, domain.RoleAdmin, 5); err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
}
