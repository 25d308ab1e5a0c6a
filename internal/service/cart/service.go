package cart

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront-backend/internal/domain"
	cartrepo "storefront-backend/internal/repository/cart"
)

// Service exposes the per-user cart aggregate. Stock and activity checks run
// inside the repository transactions; the service validates input and derives
// the display totals.
type Service struct {
	repo cartRepo
}

type cartRepo interface {
	LinesByUser(ctx context.Context, userID int64) ([]domain.CartLine, error)
	AddLine(ctx context.Context, userID, productID int64, quantity int) (*domain.CartLine, error)
	UpdateQuantity(ctx context.Context, userID, lineID int64, quantity int) (*domain.CartLine, error)
	RemoveLine(ctx context.Context, userID, lineID int64) error
	Clear(ctx context.Context, userID int64) (int64, error)
}

func New(repo cartrepo.Repository) *Service {
	return &Service{repo: repo}
}

// AddInput carries the add-to-cart payload.
type AddInput struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Get returns the user's cart with line subtotals summed into a display
// total rounded to 2 decimal places.
func (s *Service) Get(ctx context.Context, userID int64) (*domain.Cart, error) {
	lines, err := s.repo.LinesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart := &domain.Cart{
		Items: lines,
		Total: domain.CartTotal(lines).Round(2),
	}
	if cart.Items == nil {
		cart.Items = []domain.CartLine{}
	}
	for _, l := range lines {
		cart.TotalQuantity += l.Quantity
	}
	return cart, nil
}

// Total sums quantity x snapshot price over the user's lines.
func (s *Service) Total(ctx context.Context, userID int64) (decimal.Decimal, error) {
	lines, err := s.repo.LinesByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return domain.CartTotal(lines).Round(2), nil
}

// AddLine validates the quantity and delegates to the repository, which
// merges into an existing (user, product) line when present.
func (s *Service) AddLine(ctx context.Context, userID int64, in AddInput) (*domain.CartLine, error) {
	if in.ProductID <= 0 {
		return nil, domain.NewValidationError("productId", "must reference a product")
	}
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 1 {
		return nil, domain.NewValidationError("quantity", "must be at least 1")
	}
	return s.repo.AddLine(ctx, userID, in.ProductID, qty)
}

// UpdateQuantity re-validates the new quantity against current product stock.
func (s *Service) UpdateQuantity(ctx context.Context, userID, lineID int64, quantity int) (*domain.CartLine, error) {
	if quantity < 1 {
		return nil, domain.NewValidationError("quantity", "must be at least 1")
	}
	return s.repo.UpdateQuantity(ctx, userID, lineID, quantity)
}

func (s *Service) RemoveLine(ctx context.Context, userID, lineID int64) error {
	return s.repo.RemoveLine(ctx, userID, lineID)
}

// Clear empties the user's cart and returns how many lines were removed.
func (s *Service) Clear(ctx context.Context, userID int64) (int64, error) {
	return s.repo.Clear(ctx, userID)
}
