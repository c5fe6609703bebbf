// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/your-org/marketplace-backend/internal/domain/identity"
)

// Cart holds a buyer's pending items for a single store. A cart is owned
// by either a registered user or an anonymous session, never both. Carts
// are hard-deleted: an empty cart and a missing cart are the same state.
type Cart struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	OwnerUserID       *uint     `gorm:"index" json:"owner_user_id,omitempty"`
	OwnerSessionToken *string   `gorm:"index;size:64" json:"-"`
	StoreID           uint      `gorm:"not null;index" json:"store_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Relationships
	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`
}

// CartItem represents one product line in a cart. A product appears at
// most once per cart; adding it again increments the quantity.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"cart_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"product_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name for Cart
func (Cart) TableName() string {
	return "carts"
}

// TableName overrides the table name for CartItem
func (CartItem) TableName() string {
	return "cart_items"
}

// OwnedBy reports whether the given identity owns this cart
func (c *Cart) OwnedBy(ident identity.Identity) bool {
	if ident.UserID != nil {
		return c.OwnerUserID != nil && *c.OwnerUserID == *ident.UserID
	}
	return c.OwnerSessionToken != nil && *c.OwnerSessionToken == ident.SessionToken
}

// IsEmpty reports whether the cart has no items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
