package domain

import (
	"time"
)

// UncategorizedName is reported for products whose category no longer exists.
const UncategorizedName = "Uncategorized"

// Product represents a product in the catalog
type Product struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description" db:"description"`
	Price        float64   `json:"price" db:"price"`
	CategoryID   string    `json:"category_id" db:"category_id"`
	CategoryName string    `json:"category_name" db:"-"`
	ImageURL     string    `json:"image_url" db:"image_url"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Category represents a product category
type Category struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CategoryPatch holds the fields of a partial category update. Nil fields are left untouched.
type CategoryPatch struct {
	Name        *string
	Description *string
}

// ProductFilter narrows a product search. Zero values disable a filter.
type ProductFilter struct {
	Query      string
	CategoryID string
	MinPrice   *float64
	MaxPrice   *float64
}

// Matches reports whether p satisfies every filter that is set. It is the
// in-memory form of the filter that ProductRepository.Search applies in SQL;
// repository tests hold the two in agreement and in-memory repositories use it.
func (f ProductFilter) Matches(p *Product) bool {
	if f.Query != "" && !containsFold(p.Name, f.Query) {
		return false
	}
	if f.CategoryID != "" && p.CategoryID != f.CategoryID {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	return true
}
