package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one (user, product) entry in a shopping cart. UnitPrice is
// snapshotted when the line is created and does not follow later price
// changes on the product.
type CartLine struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`

	Product *Product `json:"product,omitempty"`
}

// Subtotal is quantity times the snapshotted unit price.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart bundles a user's lines with the derived totals.
type Cart struct {
	Items         []CartLine      `json:"items"`
	TotalQuantity int             `json:"totalQuantity"`
	Total         decimal.Decimal `json:"total"`
}

// CartTotal sums quantity x unit price over lines at full precision.
func CartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
