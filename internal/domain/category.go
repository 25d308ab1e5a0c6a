package domain

import "time"

// Category is a top-level catalog grouping. Deactivating one cascades to every
// subcategory and product underneath it; reactivating never cascades.
type Category struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	Active           bool      `json:"active"`
	SubcategoryCount int       `json:"subcategoryCount,omitempty"`
	ProductCount     int       `json:"productCount,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	Subcategories []Subcategory `json:"subcategories,omitempty"`
}

// Subcategory belongs to exactly one Category. Its name is unique within that
// category. Deactivation cascades to its products only.
type Subcategory struct {
	ID           int64     `json:"id"`
	CategoryID   int64     `json:"categoryId"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Active       bool      `json:"active"`
	ProductCount int       `json:"productCount,omitempty"`
	CategoryName string    `json:"categoryName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
