// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a catalog product of a store
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	StoreID     uint           `gorm:"not null;index" json:"store_id"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Price       int64          `gorm:"not null" json:"price"` // Price in cents
	Available   bool           `gorm:"default:true" json:"available"`
	Stock       *int           `json:"stock"` // Null means unmetered stock
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Images       []ProductImage       `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images,omitempty"`
	OptionGroups []ProductOptionGroup `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"option_groups,omitempty"`
}

// ProductImage represents product images
type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	URL       string    `gorm:"not null;size:500" json:"url"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductOptionGroup represents a set of options on a product (toppings, sizes)
type ProductOptionGroup struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProductID uint   `gorm:"not null;index" json:"product_id"`
	Name      string `gorm:"not null;size:100" json:"name"`
	MinSelect int    `gorm:"default:0" json:"min_select"`
	MaxSelect int    `gorm:"default:1" json:"max_select"`

	Options []ProductOption `gorm:"foreignKey:GroupID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"options,omitempty"`
}

// ProductOption represents a selectable option inside a group
type ProductOption struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	GroupID    uint   `gorm:"not null;index" json:"group_id"`
	Name       string `gorm:"not null;size:100" json:"name"`
	PriceDelta int64  `gorm:"default:0" json:"price_delta"` // In cents, added to base price
}

// TableName overrides
func (Product) TableName() string            { return "products" }
func (ProductImage) TableName() string       { return "product_images" }
func (ProductOptionGroup) TableName() string { return "product_option_groups" }
func (ProductOption) TableName() string      { return "product_options" }

// IsMetered reports whether stock is tracked for this product
func (p *Product) IsMetered() bool {
	return p.Stock != nil
}

// HasStock reports whether the requested quantity can be fulfilled.
// Unmetered products always have stock.
func (p *Product) HasStock(quantity int) bool {
	if !p.IsMetered() {
		return true
	}
	return *p.Stock >= quantity
}

// IsOrderable reports whether the product can enter a cart
func (p *Product) IsOrderable() bool {
	if !p.Available {
		return false
	}
	return !p.IsMetered() || *p.Stock > 0
}
