package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"storefront-backend/internal/domain"
)

type stubCartRepo struct {
	lines    []domain.CartLine
	added    []int
	updated  map[int64]int
	removed  []int64
	cleared  bool
	lastUser int64
}

func (s *stubCartRepo) LinesByUser(_ context.Context, userID int64) ([]domain.CartLine, error) {
	s.lastUser = userID
	return s.lines, nil
}

func (s *stubCartRepo) AddLine(_ context.Context, userID, productID int64, quantity int) (*domain.CartLine, error) {
	s.added = append(s.added, quantity)
	return &domain.CartLine{UserID: userID, ProductID: productID, Quantity: quantity}, nil
}

func (s *stubCartRepo) UpdateQuantity(_ context.Context, userID, lineID int64, quantity int) (*domain.CartLine, error) {
	if s.updated == nil {
		s.updated = map[int64]int{}
	}
	s.updated[lineID] = quantity
	return &domain.CartLine{ID: lineID, UserID: userID, Quantity: quantity}, nil
}

func (s *stubCartRepo) RemoveLine(_ context.Context, _, lineID int64) error {
	s.removed = append(s.removed, lineID)
	return nil
}

func (s *stubCartRepo) Clear(context.Context, int64) (int64, error) {
	s.cleared = true
	return int64(len(s.lines)), nil
}

func TestGet_DerivesTotals(t *testing.T) {
	repo := &stubCartRepo{lines: []domain.CartLine{
		{Quantity: 2, UnitPrice: decimal.RequireFromString("19.99")},
		{Quantity: 1, UnitPrice: decimal.RequireFromString("5.255")},
	}}
	svc := New(repo)

	cart, err := svc.Get(context.Background(), 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if repo.lastUser != 42 {
		t.Fatalf("expected lookup for user 42, got %d", repo.lastUser)
	}
	if cart.TotalQuantity != 3 {
		t.Fatalf("expected total quantity 3, got %d", cart.TotalQuantity)
	}
	// 39.98 + 5.255 = 45.235, rounded half-up to 45.24 for display
	if got := cart.Total.String(); got != "45.24" {
		t.Fatalf("expected total 45.24, got %s", got)
	}
}

func TestGet_EmptyCartHasItemsSlice(t *testing.T) {
	svc := New(&stubCartRepo{})
	cart, err := svc.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cart.Items == nil {
		t.Fatal("expected non-nil items slice for an empty cart")
	}
	if !cart.Total.IsZero() {
		t.Fatalf("expected zero total, got %s", cart.Total)
	}
}

func TestAddLine_DefaultsQuantity(t *testing.T) {
	repo := &stubCartRepo{}
	svc := New(repo)

	line, err := svc.AddLine(context.Background(), 1, AddInput{ProductID: 9})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if line.Quantity != 1 {
		t.Fatalf("expected default quantity 1, got %d", line.Quantity)
	}
}

func TestAddLine_Validation(t *testing.T) {
	svc := New(&stubCartRepo{})
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, 1, AddInput{ProductID: 0, Quantity: 1}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for missing product, got %v", err)
	}
	if _, err := svc.AddLine(ctx, 1, AddInput{ProductID: 9, Quantity: -2}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for negative quantity, got %v", err)
	}
}

func TestUpdateQuantity_Validation(t *testing.T) {
	repo := &stubCartRepo{}
	svc := New(repo)
	ctx := context.Background()

	if _, err := svc.UpdateQuantity(ctx, 1, 5, 0); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}
	if _, err := svc.UpdateQuantity(ctx, 1, 5, 4); err != nil {
		t.Fatalf("update: %v", err)
	}
	if repo.updated[5] != 4 {
		t.Fatalf("expected line 5 updated to 4, got %v", repo.updated)
	}
}
