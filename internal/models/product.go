package models

import "time"

// Category groups products on the menu.
type Category string

const (
	CategoryBurger  Category = "burger"
	CategoryPizza   Category = "pizza"
	CategoryPasta   Category = "pasta"
	CategoryDessert Category = "dessert"
	CategoryDrink   Category = "drink"
	CategoryOther   Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryBurger, CategoryPizza, CategoryPasta, CategoryDessert, CategoryDrink, CategoryOther:
		return true
	}
	return false
}

// Product represents a menu item.
type Product struct {
	ID          string    `json:"_id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null" validate:"required,min=2,max=100"`
	Description string    `json:"description" validate:"required,max=500"`
	Price       float64   `json:"price" validate:"gte=0"`
	Category    Category  `json:"category" gorm:"type:varchar(16);index" validate:"required,enum"`
	Image       string    `json:"image" validate:"required"`
	Rating      float64   `json:"rating" validate:"gte=0,lte=5"`
	NumReviews  int       `json:"numReviews" validate:"gte=0"`
	InStock     bool      `json:"inStock" gorm:"not null"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProductFilter narrows a product listing. Zero values mean "no constraint".
type ProductFilter struct {
	Category  Category
	Featured  bool
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
}

// Match reports whether p satisfies the filter.
func (f ProductFilter) Match(p Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Featured && !p.Featured {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.MinRating != nil && p.Rating < *f.MinRating {
		return false
	}
	return true
}
