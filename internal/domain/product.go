package domain

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

var imageRefPattern = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif)$`)

// ValidImageRef reports whether ref carries an accepted image extension.
func ValidImageRef(ref string) bool {
	return imageRefPattern.MatchString(ref)
}

// Product is a sellable catalog item. Stock is only mutated through the
// inventory operations; Price is the live price, while cart and order lines
// keep their own snapshots.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	ImageRef      string          `json:"imageRef,omitempty"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	CategoryID    int64           `json:"categoryId"`
	SubcategoryID int64           `json:"subcategoryId"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	CategoryName    string `json:"categoryName,omitempty"`
	SubcategoryName string `json:"subcategoryName,omitempty"`
}

// HasStock reports whether at least qty units are available.
func (p Product) HasStock(qty int) bool {
	return p.Stock >= qty
}
