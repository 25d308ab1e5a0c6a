package category

import (
	"context"

	"storefront-backend/internal/domain"
)

// Filter narrows List results.
type Filter struct {
	Active *bool
}

type Repository interface {
	List(ctx context.Context, f Filter) ([]domain.Category, error)
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	Create(ctx context.Context, c domain.Category) (*domain.Category, error)
	Update(ctx context.Context, c domain.Category) (*domain.Category, error)
	// SetActive flips the flag. Deactivation cascades to subcategories and
	// products in the same transaction.
	SetActive(ctx context.Context, id int64, active bool) (*domain.Category, error)
	Delete(ctx context.Context, id int64) error
	// Ensure inserts the category or returns the existing one by name.
	// Used by bulk import and seeding.
	Ensure(ctx context.Context, name, description string) (*domain.Category, error)
}
