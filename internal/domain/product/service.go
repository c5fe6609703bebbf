// internal/domain/product/service.go
package product

import (
	"errors"

	"gorm.io/gorm"

	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/store"
	"github.com/your-org/marketplace-backend/internal/pkg/apperr"
)

// Service handles product business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
	stores *store.Service
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
		stores: store.NewService(db, cfg),
	}
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	Name        string               `json:"name" binding:"required"`
	Description string               `json:"description"`
	Price       int64                `json:"price" binding:"required,gt=0"`
	Available   *bool                `json:"available"`
	Stock       *int                 `json:"stock" binding:"omitempty,gte=0"`
	Images      []ImageRequest       `json:"images"`
	Groups      []OptionGroupRequest `json:"option_groups"`
}

// UpdateProductRequest represents product update data
type UpdateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int64  `json:"price" binding:"omitempty,gt=0"`
	Available   *bool   `json:"available"`
}

// SetStockRequest represents a stock update. A null stock clears metering.
type SetStockRequest struct {
	Stock *int `json:"stock" binding:"omitempty,gte=0"`
}

// ImageRequest represents an image attached at creation
type ImageRequest struct {
	URL       string `json:"url" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

// OptionGroupRequest represents an option group attached at creation
type OptionGroupRequest struct {
	Name      string          `json:"name" binding:"required"`
	MinSelect int             `json:"min_select"`
	MaxSelect int             `json:"max_select"`
	Options   []OptionRequest `json:"options"`
}

// OptionRequest represents a single option
type OptionRequest struct {
	Name       string `json:"name" binding:"required"`
	PriceDelta int64  `json:"price_delta"`
}

// ProductResponse wraps a product with caller-dependent fields
type ProductResponse struct {
	Product
	IsOwner *bool `json:"is_owner,omitempty"`
}

// ListByStore returns a store's products, available first
func (s *Service) ListByStore(storeID uint) ([]Product, error) {
	if _, err := s.stores.GetByID(storeID); err != nil {
		return nil, err
	}

	var products []Product
	err := s.db.Preload("Images").Preload("OptionGroups.Options").
		Where("store_id = ?", storeID).
		Order("available DESC, name ASC").
		Find(&products).Error
	if err != nil {
		return nil, apperr.Internal("failed to list products", err)
	}
	return products, nil
}

// Get retrieves a product. When callerID is set the response carries the
// is_owner flag; anonymous callers never see it.
func (s *Service) Get(productID uint, callerID *uint) (*ProductResponse, error) {
	p, err := s.load(productID)
	if err != nil {
		return nil, err
	}

	resp := &ProductResponse{Product: *p}
	if callerID != nil {
		st, err := s.stores.GetByID(p.StoreID)
		if err != nil {
			return nil, err
		}
		isOwner := st.IsOwnedBy(*callerID)
		resp.IsOwner = &isOwner
	}
	return resp, nil
}

// Create adds a product to a store owned by the given user
func (s *Service) Create(storeID, userID uint, req *CreateProductRequest) (*Product, error) {
	if _, err := s.stores.GetOwnedStore(storeID, userID); err != nil {
		return nil, err
	}

	p := Product{
		StoreID:     storeID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Available:   true,
		Stock:       req.Stock,
	}
	if req.Available != nil {
		p.Available = *req.Available
	}

	for _, img := range req.Images {
		p.Images = append(p.Images, ProductImage{URL: img.URL, SortOrder: img.SortOrder})
	}
	for _, g := range req.Groups {
		group := ProductOptionGroup{
			Name:      g.Name,
			MinSelect: g.MinSelect,
			MaxSelect: g.MaxSelect,
		}
		for _, o := range g.Options {
			group.Options = append(group.Options, ProductOption{Name: o.Name, PriceDelta: o.PriceDelta})
		}
		p.OptionGroups = append(p.OptionGroups, group)
	}

	if err := s.db.Create(&p).Error; err != nil {
		return nil, apperr.Internal("failed to create product", err)
	}

	return &p, nil
}

// Update modifies a product owned by the given user
func (s *Service) Update(productID, userID uint, req *UpdateProductRequest) (*Product, error) {
	p, err := s.loadOwned(productID, userID)
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
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Available != nil {
		updates["available"] = *req.Available
	}

	if len(updates) > 0 {
		if err := s.db.Model(p).Updates(updates).Error; err != nil {
			return nil, apperr.Internal("failed to update product", err)
		}
	}

	return p, nil
}

// SetStock sets the absolute stock level or disables metering
func (s *Service) SetStock(productID, userID uint, req *SetStockRequest) (*Product, error) {
	p, err := s.loadOwned(productID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(p).Update("stock", req.Stock).Error; err != nil {
		return nil, apperr.Internal("failed to update stock", err)
	}
	p.Stock = req.Stock

	return p, nil
}

// Delete removes a product owned by the given user
func (s *Service) Delete(productID, userID uint) error {
	p, err := s.loadOwned(productID, userID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(p).Error; err != nil {
		return apperr.Internal("failed to delete product", err)
	}
	return nil
}

func (s *Service) load(productID uint) (*Product, error) {
	var p Product
	err := s.db.Preload("Images").Preload("OptionGroups.Options").First(&p, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product")
		}
		return nil, apperr.Internal("failed to load product", err)
	}
	return &p, nil
}

func (s *Service) loadOwned(productID, userID uint) (*Product, error) {
	p, err := s.load(productID)
	if err != nil {
		return nil, err
	}
	if _, err := s.stores.GetOwnedStore(p.StoreID, userID); err != nil {
		return nil, err
	}
	return p, nil
}
