// internal/domain/store/service.go
package store

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/pkg/apperr"
)

var validPixKeyTypes = map[string]bool{
	"cpf":    true,
	"cnpj":   true,
	"email":  true,
	"phone":  true,
	"random": true,
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Service handles store business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new store service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateStoreRequest represents store creation data
type CreateStoreRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	Phone        string `json:"phone"`
	Email        string `json:"email" binding:"omitempty,email"`
	LogoURL      string `json:"logo_url"`
	AddressLine  string `json:"address_line"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	DeliveryFee  int64  `json:"delivery_fee"`
}

// UpdateStoreRequest represents store update data
type UpdateStoreRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email" binding:"omitempty,email"`
	LogoURL      *string `json:"logo_url"`
	AddressLine  *string `json:"address_line"`
	Neighborhood *string `json:"neighborhood"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	DeliveryFee  *int64  `json:"delivery_fee"`
}

// AddPixKeyRequest represents pix key creation data
type AddPixKeyRequest struct {
	KeyType  string `json:"key_type" binding:"required"`
	KeyValue string `json:"key_value" binding:"required"`
}

// StoreResponse wraps a store with caller-dependent fields
type StoreResponse struct {
	Store
	IsOwner *bool `json:"is_owner,omitempty"`
}

// ListStores returns all stores, open stores first
func (s *Service) ListStores() ([]Store, error) {
	var stores []Store
	err := s.db.Order("is_open DESC, name ASC").Find(&stores).Error
	if err != nil {
		return nil, apperr.Internal("failed to list stores", err)
	}
	return stores, nil
}

// GetBySlug retrieves a store by its slug. When callerID is set the
// response carries the is_owner flag; anonymous callers never see it.
func (s *Service) GetBySlug(slug string, callerID *uint) (*StoreResponse, error) {
	var st Store
	err := s.db.Preload("PixKeys").Where("slug = ?", slug).First(&st).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("store")
		}
		return nil, apperr.Internal("failed to load store", err)
	}

	resp := &StoreResponse{Store: st}
	if callerID != nil {
		isOwner := st.IsOwnedBy(*callerID)
		resp.IsOwner = &isOwner
	}
	return resp, nil
}

// GetByID retrieves a store by ID
func (s *Service) GetByID(storeID uint) (*Store, error) {
	var st Store
	err := s.db.First(&st, storeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("store")
		}
		return nil, apperr.Internal("failed to load store", err)
	}
	return &st, nil
}

// GetOwnedStore loads a store and verifies ownership
func (s *Service) GetOwnedStore(storeID, userID uint) (*Store, error) {
	st, err := s.GetByID(storeID)
	if err != nil {
		return nil, err
	}
	if !st.IsOwnedBy(userID) {
		return nil, apperr.PermissionDenied("you do not own this store")
	}
	return st, nil
}

// CreateStore creates a store owned by the given user
func (s *Service) CreateStore(ownerID uint, req *CreateStoreRequest) (*Store, error) {
	st := Store{
		OwnerUserID:  ownerID,
		Name:         req.Name,
		Slug:         s.uniqueSlug(req.Name),
		Description:  req.Description,
		Phone:        req.Phone,
		Email:        strings.ToLower(req.Email),
		LogoURL:      req.LogoURL,
		AddressLine:  req.AddressLine,
		Neighborhood: req.Neighborhood,
		City:         req.City,
		State:        req.State,
		DeliveryFee:  req.DeliveryFee,
		IsOpen:       true,
	}

	if err := s.db.Create(&st).Error; err != nil {
		return nil, apperr.Internal("failed to create store", err)
	}

	return &st, nil
}

// UpdateStore updates a store owned by the given user
func (s *Service) UpdateStore(storeID, userID uint, req *UpdateStoreRequest) (*Store, error) {
	st, err := s.GetOwnedStore(storeID, userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = strings.ToLower(*req.Email)
	}
	if req.LogoURL != nil {
		updates["logo_url"] = *req.LogoURL
	}
	if req.AddressLine != nil {
		updates["address_line"] = *req.AddressLine
	}
	if req.Neighborhood != nil {
		updates["neighborhood"] = *req.Neighborhood
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.State != nil {
		updates["state"] = *req.State
	}
	if req.DeliveryFee != nil {
		if *req.DeliveryFee < 0 {
			return nil, apperr.Validation("delivery_fee cannot be negative")
		}
		updates["delivery_fee"] = *req.DeliveryFee
	}

	if len(updates) > 0 {
		if err := s.db.Model(st).Updates(updates).Error; err != nil {
			return nil, apperr.Internal("failed to update store", err)
		}
	}

	return st, nil
}

// SetOpen toggles whether the store accepts new orders
func (s *Service) SetOpen(storeID, userID uint, isOpen bool) (*Store, error) {
	st, err := s.GetOwnedStore(storeID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(st).Update("is_open", isOpen).Error; err != nil {
		return nil, apperr.Internal("failed to update store state", err)
	}
	st.IsOpen = isOpen

	return st, nil
}

// AddPixKey registers a pix key for a store
func (s *Service) AddPixKey(storeID, userID uint, req *AddPixKeyRequest) (*PixKey, error) {
	if _, err := s.GetOwnedStore(storeID, userID); err != nil {
		return nil, err
	}

	keyType := strings.ToLower(req.KeyType)
	if !validPixKeyTypes[keyType] {
		return nil, apperr.Validation(fmt.Sprintf("invalid pix key type: %s", req.KeyType))
	}

	key := PixKey{
		StoreID:  storeID,
		KeyType:  keyType,
		KeyValue: req.KeyValue,
	}

	if err := s.db.Create(&key).Error; err != nil {
		return nil, apperr.Internal("failed to add pix key", err)
	}

	return &key, nil
}

// ListPixKeys lists a store's pix keys, owner only
func (s *Service) ListPixKeys(storeID, userID uint) ([]PixKey, error) {
	if _, err := s.GetOwnedStore(storeID, userID); err != nil {
		return nil, err
	}

	var keys []PixKey
	if err := s.db.Where("store_id = ?", storeID).Order("created_at ASC").Find(&keys).Error; err != nil {
		return nil, apperr.Internal("failed to list pix keys", err)
	}
	return keys, nil
}

// DeletePixKey removes a pix key from a store
func (s *Service) DeletePixKey(storeID, keyID, userID uint) error {
	if _, err := s.GetOwnedStore(storeID, userID); err != nil {
		return err
	}

	result := s.db.Where("id = ? AND store_id = ?", keyID, storeID).Delete(&PixKey{})
	if result.Error != nil {
		return apperr.Internal("failed to delete pix key", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("pix key")
	}
	return nil
}

// uniqueSlug builds a URL slug from the store name, suffixing on collision
func (s *Service) uniqueSlug(name string) string {
	base := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if base == "" {
		base = "store"
	}

	slug := base
	for i := 2; ; i++ {
		var count int64
		s.db.Model(&Store{}).Where("slug = ?", slug).Count(&count)
		if count == 0 {
			return slug
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
