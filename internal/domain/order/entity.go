// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"github.com/your-org/marketplace-backend/internal/domain/identity"
)

// Status represents the order status
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusPreparing  Status = "preparing"
	StatusDelivering Status = "delivering"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ValidStatuses enumerates every accepted status value
var ValidStatuses = map[Status]bool{
	StatusPending:    true,
	StatusConfirmed:  true,
	StatusPreparing:  true,
	StatusDelivering: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
}

// Order represents a committed purchase from a single store
type Order struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	OrderNumber  string  `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID       *uint   `gorm:"index" json:"user_id,omitempty"` // Nullable for anonymous orders
	SessionToken *string `gorm:"index;size:64" json:"-"`
	StoreID      uint    `gorm:"not null;index" json:"store_id"`
	Status       Status  `gorm:"not null;default:'pending'" json:"status"`

	// Customer information captured at commit
	CustomerName    string `gorm:"not null;size:150" json:"customer_name"`
	CustomerPhone   string `gorm:"not null;size:20" json:"customer_phone"`
	CustomerAddress string `gorm:"size:500" json:"customer_address"`

	// Store snapshot captured at commit
	StoreName  string `gorm:"size:150" json:"store_name"`
	StorePhone string `gorm:"size:20" json:"store_phone"`

	// Financial information, in cents
	Subtotal    int64 `gorm:"not null" json:"subtotal"`
	DeliveryFee int64 `gorm:"default:0" json:"delivery_fee"`
	Total       int64 `gorm:"not null" json:"total"`

	// Payment and delivery
	PaymentMethod string `gorm:"not null;size:20" json:"payment_method"` // pix, cash, card
	NeedsChange   bool   `gorm:"default:false" json:"needs_change"`
	ChangeAmount  int64  `gorm:"default:0" json:"change_amount"`
	DeliveryType  string `gorm:"not null;size:20" json:"delivery_type"` // delivery, pickup

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// OrderItem is a frozen snapshot of a product line at commit time.
// Later product edits never change it.
type OrderItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	Name       string    `gorm:"not null;size:255" json:"name"`
	Price      int64     `gorm:"not null" json:"price"`       // Price per unit in cents
	Quantity   int       `gorm:"not null" json:"quantity"`
	TotalPrice int64     `gorm:"not null" json:"total_price"` // Quantity * Price
	CreatedAt  time.Time `json:"created_at"`
}

// SalesLog is the append-only record of a completed commit. Rows are
// written best-effort after order creation and can only be deleted by
// an admin.
type SalesLog struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	OrderID         uint      `gorm:"not null;index" json:"order_id"`
	OrderNumber     string    `gorm:"not null;size:50" json:"order_number"`
	StoreID         uint      `gorm:"not null;index" json:"store_id"`
	StoreName       string    `gorm:"size:150" json:"store_name"`
	StoreAddress    *string   `gorm:"size:500" json:"store_address"`
	CustomerName    string    `gorm:"size:150" json:"customer_name"`
	CustomerPhone   string    `gorm:"size:20" json:"customer_phone"`
	CustomerAddress *string   `gorm:"size:500" json:"customer_address"`
	ItemsSummary    string    `gorm:"type:text" json:"items_summary"`
	Subtotal        int64     `gorm:"not null" json:"subtotal"`
	DeliveryFee     int64     `gorm:"default:0" json:"delivery_fee"`
	Total           int64     `gorm:"not null" json:"total"`
	PaymentMethod   string    `gorm:"size:20" json:"payment_method"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }
func (SalesLog) TableName() string  { return "sales_logs" }

// GenerateOrderNumber generates a unique order number
func (o *Order) GenerateOrderNumber() string {
	// Format: ORD-YYYYMMDD-XXXXX
	return fmt.Sprintf("ORD-%s-%05d", time.Now().Format("20060102"), o.ID)
}

// IsTerminal reports whether the order reached a final status
func (o *Order) IsTerminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}

// CanTransitionTo reports whether the order may move to the given
// status. Terminal orders never transition; every non-terminal order
// may move to any other valid status, including skipping ahead.
func (o *Order) CanTransitionTo(next Status) bool {
	if !ValidStatuses[next] {
		return false
	}
	if o.IsTerminal() {
		return false
	}
	return next != o.Status
}

// BelongsTo reports whether the order was placed by the given identity
func (o *Order) BelongsTo(ident identity.Identity) bool {
	if ident.UserID != nil {
		return o.UserID != nil && *o.UserID == *ident.UserID
	}
	return o.SessionToken != nil && *o.SessionToken == ident.SessionToken
}
