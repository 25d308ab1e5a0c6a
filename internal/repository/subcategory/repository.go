package subcategory

import (
	"context"

	"storefront-backend/internal/domain"
)

// Filter narrows List results.
type Filter struct {
	CategoryID *int64
	Active     *bool
}

type Repository interface {
	List(ctx context.Context, f Filter) ([]domain.Subcategory, error)
	GetByID(ctx context.Context, id int64) (*domain.Subcategory, error)
	// Create verifies inside its transaction that the parent category exists
	// and is active.
	Create(ctx context.Context, s domain.Subcategory) (*domain.Subcategory, error)
	Update(ctx context.Context, s domain.Subcategory) (*domain.Subcategory, error)
	// SetActive flips the flag. Deactivation cascades to the subcategory's
	// products in the same transaction.
	SetActive(ctx context.Context, id int64, active bool) (*domain.Subcategory, error)
	Delete(ctx context.Context, id int64) error
	// Ensure inserts the subcategory or returns the existing one by
	// (category, name). Used by bulk import and seeding.
	Ensure(ctx context.Context, categoryID int64, name, description string) (*domain.Subcategory, error)
}
