// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/cart"
	"github.com/your-org/marketplace-backend/internal/interfaces/http/middleware"
)

// CartHandler handles shopping cart endpoints
type CartHandler struct {
	cartService *cart.Service
	config      *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(db *gorm.DB, cfg *config.Config) *CartHandler {
	return &CartHandler{
		cartService: cart.NewService(db, cfg),
		config:      cfg,
	}
}

// GetCart returns the caller's cart. An absent cart reads as null, an
// empty cart never exists.
func (h *CartHandler) GetCart(c *gin.Context) {
	ident := middleware.GetIdentity(c)

	response, err := h.cartService.Get(ident)
	if err != nil {
		respondError(c, err)
		return
	}

	// response is *cart.CartResponse, so a nil value marshals as null
	c.JSON(http.StatusOK, gin.H{
		"data": response,
	})
}

// AddItem adds a product to the cart
func (h *CartHandler) AddItem(c *gin.Context) {
	ident := middleware.GetIdentity(c)

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.cartService.AddItem(ident, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
		"data":    response,
	})
}

// UpdateItem changes the quantity of a cart item
func (h *CartHandler) UpdateItem(c *gin.Context) {
	ident := middleware.GetIdentity(c)

	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	var req cart.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.cartService.UpdateQuantity(ident, uint(itemID), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart updated",
		"data":    response,
	})
}

// RemoveItem removes a cart item
func (h *CartHandler) RemoveItem(c *gin.Context) {
	ident := middleware.GetIdentity(c)

	itemID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	response, err := h.cartService.RemoveItem(ident, uint(itemID))
	if err != nil {
		respondError(c, err)
		return
	}

	if response == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "Item removed, cart is now empty",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart",
		"data":    response,
	})
}

// ClearCart empties the caller's cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	ident := middleware.GetIdentity(c)

	if err := h.cartService.Clear(ident); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared",
	})
}
