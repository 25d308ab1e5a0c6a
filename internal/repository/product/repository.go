package product

import (
	"context"

	"storefront-backend/internal/domain"
)

// Filter narrows List results.
type Filter struct {
	CategoryID    *int64
	SubcategoryID *int64
	Active        *bool
	Search        string
	Limit         int
	Offset        int
}

type Repository interface {
	List(ctx context.Context, f Filter) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	// Create verifies inside its transaction that category and subcategory
	// exist, are active, and belong together.
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	// Upsert inserts the product, or refreshes description, price and stock
	// when one with the same name already exists under the subcategory. Used
	// by bulk import and seeding.
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
	SetActive(ctx context.Context, id int64, active bool) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error

	// Inventory guard. All three are atomic against concurrent stock writers.
	SetStock(ctx context.Context, id int64, stock int) (*domain.Product, error)
	IncreaseStock(ctx context.Context, id int64, qty int) (*domain.Product, error)
	// DecreaseStock fails with domain.ErrInsufficientStock when fewer than
	// qty units remain at commit time.
	DecreaseStock(ctx context.Context, id int64, qty int) (*domain.Product, error)
}
