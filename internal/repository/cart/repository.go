package cart

import (
	"context"

	"storefront-backend/internal/domain"
)

type Repository interface {
	// LinesByUser returns the user's cart lines with product info attached,
	// newest first.
	LinesByUser(ctx context.Context, userID int64) ([]domain.CartLine, error)
	// AddLine creates a line snapshotting the product's current price, or
	// merges quantities when a line for (user, product) already exists. The
	// combined quantity is validated against current stock.
	AddLine(ctx context.Context, userID, productID int64, quantity int) (*domain.CartLine, error)
	// UpdateQuantity re-validates the new quantity against current stock.
	UpdateQuantity(ctx context.Context, userID, lineID int64, quantity int) (*domain.CartLine, error)
	RemoveLine(ctx context.Context, userID, lineID int64) error
	// Clear deletes every line for the user and returns the count removed.
	Clear(ctx context.Context, userID int64) (int64, error)
}
