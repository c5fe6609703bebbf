// internal/domain/cart/service.go
package cart

import (
	"errors"

	"gorm.io/gorm"

	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/identity"
	"github.com/your-org/marketplace-backend/internal/domain/product"
	"github.com/your-org/marketplace-backend/internal/domain/store"
	"github.com/your-org/marketplace-backend/internal/pkg/apperr"
)

// Service handles cart business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// AddItemRequest represents add to cart data
type AddItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"omitempty,gte=1"`
}

// UpdateItemRequest represents cart item quantity update data
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gte=1"`
}

// ItemResponse represents a cart line with product details
type ItemResponse struct {
	ID          uint   `json:"id"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`
	TotalPrice  int64  `json:"total_price"`
}

// CartResponse represents a cart with computed totals
type CartResponse struct {
	ID        uint           `json:"id"`
	StoreID   uint           `json:"store_id"`
	Items     []ItemResponse `json:"items"`
	ItemCount int            `json:"item_count"`
	Subtotal  int64          `json:"subtotal"`
}

// Get returns the caller's cart with product details, or nil when the
// caller has no cart
func (s *Service) Get(ident identity.Identity) (*CartResponse, error) {
	c, err := s.findCart(ident)
	if err != nil || c == nil {
		return nil, err
	}
	return s.buildResponse(c)
}

// AddItem adds a product to the caller's cart, creating the cart when
// absent. Adding a product already in the cart increments its quantity.
func (s *Service) AddItem(ident identity.Identity, req *AddItemRequest) (*CartResponse, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	var p product.Product
	if err := s.db.First(&p, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product")
		}
		return nil, apperr.Internal("failed to load product", err)
	}

	var st store.Store
	if err := s.db.First(&st, p.StoreID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("store")
		}
		return nil, apperr.Internal("failed to load store", err)
	}
	if !st.IsOpen {
		return nil, apperr.BusinessRule("store is closed")
	}

	if !p.Available {
		return nil, apperr.BusinessRule("product is unavailable")
	}
	if p.IsMetered() && *p.Stock <= 0 {
		return nil, apperr.BusinessRule("product is out of stock")
	}

	c, err := s.findCart(ident)
	if err != nil {
		return nil, err
	}

	if c != nil && c.StoreID != p.StoreID {
		return nil, apperr.BusinessRule("cart holds items from another store")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if c == nil {
			c = &Cart{StoreID: p.StoreID}
			if ident.UserID != nil {
				c.OwnerUserID = ident.UserID
			} else {
				token := ident.SessionToken
				c.OwnerSessionToken = &token
			}
			if err := tx.Create(c).Error; err != nil {
				return err
			}
		}

		var item CartItem
		err := tx.Where("cart_id = ? AND product_id = ?", c.ID, p.ID).First(&item).Error
		switch {
		case err == nil:
			return tx.Model(&item).
				UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity)).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&CartItem{
				CartID:    c.ID,
				ProductID: p.ID,
				Quantity:  quantity,
			}).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, apperr.Internal("failed to add item to cart", err)
	}

	return s.Get(ident)
}

// UpdateQuantity sets the quantity of a cart item owned by the caller
func (s *Service) UpdateQuantity(ident identity.Identity, itemID uint, req *UpdateItemRequest) (*CartResponse, error) {
	c, err := s.requireCart(ident)
	if err != nil {
		return nil, err
	}

	item, err := s.ownedItem(c, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(item).Update("quantity", req.Quantity).Error; err != nil {
		return nil, apperr.Internal("failed to update cart item", err)
	}

	return s.Get(ident)
}

// RemoveItem deletes a cart line. The cart itself is deleted when its
// last item is removed; the response is nil in that case.
func (s *Service) RemoveItem(ident identity.Identity, itemID uint) (*CartResponse, error) {
	c, err := s.requireCart(ident)
	if err != nil {
		return nil, err
	}

	item, err := s.ownedItem(c, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.db.Delete(item).Error; err != nil {
		return nil, apperr.Internal("failed to remove cart item", err)
	}

	var remaining int64
	s.db.Model(&CartItem{}).Where("cart_id = ?", c.ID).Count(&remaining)
	if remaining == 0 {
		if err := s.db.Delete(&Cart{}, c.ID).Error; err != nil {
			return nil, apperr.Internal("failed to delete empty cart", err)
		}
		return nil, nil
	}

	return s.Get(ident)
}

// Clear deletes the caller's cart and its items. Clearing an absent
// cart is a no-op.
func (s *Service) Clear(ident identity.Identity) error {
	c, err := s.findCart(ident)
	if err != nil || c == nil {
		return err
	}
	return s.deleteCart(c.ID)
}

// ClearForStore deletes the caller's cart when it belongs to the given
// store. Used after an order commit.
func (s *Service) ClearForStore(ident identity.Identity, storeID uint) error {
	c, err := s.findCart(ident)
	if err != nil || c == nil {
		return err
	}
	if c.StoreID != storeID {
		return nil
	}
	return s.deleteCart(c.ID)
}

// MergeOnLogin migrates an anonymous session cart to a user after login.
// The session cart is reassigned when the user has none, merged when
// both carts belong to the same store, and left untouched on a
// cross-store conflict.
func (s *Service) MergeOnLogin(userID uint, sessionToken string) error {
	if sessionToken == "" {
		return nil
	}

	sessionCart, err := s.findCart(identity.FromSession(sessionToken))
	if err != nil || sessionCart == nil {
		return err
	}

	userCart, err := s.findCart(identity.FromUser(userID))
	if err != nil {
		return err
	}

	if userCart == nil {
		return s.db.Model(&Cart{}).Where("id = ?", sessionCart.ID).
			Updates(map[string]interface{}{
				"owner_user_id":       userID,
				"owner_session_token": nil,
			}).Error
	}

	if userCart.StoreID != sessionCart.StoreID {
		// Cross-store conflict, the session cart stays anonymous
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range sessionCart.Items {
			var existing CartItem
			err := tx.Where("cart_id = ? AND product_id = ?", userCart.ID, item.ProductID).
				First(&existing).Error
			switch {
			case err == nil:
				if err := tx.Model(&existing).
					UpdateColumn("quantity", gorm.Expr("quantity + ?", item.Quantity)).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(&CartItem{
					CartID:    userCart.ID,
					ProductID: item.ProductID,
					Quantity:  item.Quantity,
				}).Error; err != nil {
					return err
				}
			default:
				return err
			}
		}

		if err := tx.Where("cart_id = ?", sessionCart.ID).Delete(&CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Cart{}, sessionCart.ID).Error
	})
}

// findCart resolves the caller's cart, nil when absent
func (s *Service) findCart(ident identity.Identity) (*Cart, error) {
	var c Cart
	err := s.scopeOwner(ident).Preload("Items").Order("updated_at DESC").First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperr.Internal("failed to load cart", err)
	}
	return &c, nil
}

// ownedItem loads a cart item and rejects items that exist in another
// owner's cart with PermissionDenied
func (s *Service) ownedItem(c *Cart, itemID uint) (*CartItem, error) {
	var item CartItem
	if err := s.db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("cart item")
		}
		return nil, apperr.Internal("failed to load cart item", err)
	}
	if item.CartID != c.ID {
		return nil, apperr.PermissionDenied("cart item belongs to another cart")
	}
	return &item, nil
}

func (s *Service) requireCart(ident identity.Identity) (*Cart, error) {
	c, err := s.findCart(ident)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("cart")
	}
	return c, nil
}

func (s *Service) scopeOwner(ident identity.Identity) *gorm.DB {
	if ident.UserID != nil {
		return s.db.Where("owner_user_id = ?", *ident.UserID)
	}
	return s.db.Where("owner_session_token = ?", ident.SessionToken)
}

func (s *Service) deleteCart(cartID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Cart{}, cartID).Error
	})
}

func (s *Service) buildResponse(c *Cart) (*CartResponse, error) {
	resp := &CartResponse{
		ID:      c.ID,
		StoreID: c.StoreID,
		Items:   make([]ItemResponse, 0, len(c.Items)),
	}

	productIDs := make([]uint, 0, len(c.Items))
	for _, item := range c.Items {
		productIDs = append(productIDs, item.ProductID)
	}

	products := make(map[uint]product.Product, len(productIDs))
	if len(productIDs) > 0 {
		var list []product.Product
		if err := s.db.Where("id IN ?", productIDs).Find(&list).Error; err != nil {
			return nil, apperr.Internal("failed to load cart products", err)
		}
		for _, p := range list {
			products[p.ID] = p
		}
	}

	for _, item := range c.Items {
		p := products[item.ProductID]
		line := ItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    item.Quantity,
			TotalPrice:  p.Price * int64(item.Quantity),
		}
		resp.Items = append(resp.Items, line)
		resp.ItemCount += item.Quantity
		resp.Subtotal += line.TotalPrice
	}

	return resp, nil
}
