// internal/domain/store/entity.go
package store

import (
	"time"

	"gorm.io/gorm"
)

// Store represents a seller storefront
type Store struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	OwnerUserID  uint           `gorm:"not null;index" json:"owner_user_id"`
	Name         string         `gorm:"not null;size:150" json:"name"`
	Slug         string         `gorm:"uniqueIndex;not null;size:160" json:"slug"`
	Description  string         `gorm:"type:text" json:"description"`
	Phone        string         `gorm:"size:20" json:"phone"`
	Email        string         `gorm:"size:255" json:"email"`
	LogoURL      string         `gorm:"size:500" json:"logo_url"`
	AddressLine  string         `gorm:"size:255" json:"address_line"`
	Neighborhood string         `gorm:"size:100" json:"neighborhood"`
	City         string         `gorm:"size:100" json:"city"`
	State        string         `gorm:"size:100" json:"state"`
	DeliveryFee  int64          `gorm:"default:0" json:"delivery_fee"` // In cents
	IsOpen       bool           `gorm:"default:true" json:"is_open"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	PixKeys []PixKey `gorm:"foreignKey:StoreID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"pix_keys,omitempty"`
}

// PixKey represents a PIX payment key registered for a store
type PixKey struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StoreID   uint      `gorm:"not null;index" json:"store_id"`
	KeyType   string    `gorm:"not null;size:20" json:"key_type"` // cpf, cnpj, email, phone, random
	KeyValue  string    `gorm:"not null;size:140" json:"key_value"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the table name for Store
func (Store) TableName() string {
	return "stores"
}

// TableName overrides the table name for PixKey
func (PixKey) TableName() string {
	return "pix_keys"
}

// IsOwnedBy reports whether the given user owns the store
func (s *Store) IsOwnedBy(userID uint) bool {
	return s.OwnerUserID == userID
}

// FormatAddress renders the store address as a single line, empty when unset
func (s *Store) FormatAddress() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{s.AddressLine, s.Neighborhood, s.City, s.State} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	result := parts[0]
	for _, p := range parts[1:] {
		result += ", " + p
	}
	return result
}
