// internal/interfaces/http/handlers/order.go
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/checkout"
	"github.com/your-org/marketplace-backend/internal/domain/order"
	"github.com/your-org/marketplace-backend/internal/interfaces/http/middleware"
	"github.com/your-org/marketplace-backend/internal/pkg/email"
	"github.com/your-org/marketplace-backend/internal/pkg/pdf"
)

// OrderHandler handles order commit and order management endpoints
type OrderHandler struct {
	checkoutService *checkout.Service
	orderService    *order.Service
	pdfService      *pdf.Service
	config          *config.Config
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(db *gorm.DB, cfg *config.Config, log *logrus.Logger, emailService *email.EmailService) *OrderHandler {
	return &OrderHandler{
		checkoutService: checkout.NewService(db, cfg, log, emailService),
		orderService:    order.NewService(db, cfg),
		pdfService:      pdf.NewService(cfg),
		config:          cfg,
	}
}

// CommitOrder validates and places an order
func (h *OrderHandler) CommitOrder(c *gin.Context) {
	ident := middleware.GetIdentity(c)

	var req checkout.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	placed, err := h.checkoutService.Commit(ident, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    placed,
	})
}

// ListOrders returns the caller's order history
func (h *OrderHandler) ListOrders(c *gin.Context) {
	ident := middleware.GetIdentity(c)

	var req order.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.orderService.ListForBuyer(ident, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": response,
	})
}

// GetOrder returns one of the caller's orders
func (h *OrderHandler) GetOrder(c *gin.Context) {
	ident := middleware.GetIdentity(c)

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	response, err := h.orderService.GetForBuyer(ident, uint(orderID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": response,
	})
}

// ListStoreOrders returns the orders of a store owned by the caller
func (h *OrderHandler) ListStoreOrders(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	storeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid store ID"})
		return
	}

	var req order.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.orderService.ListForStore(uint(storeID), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": response,
	})
}

// UpdateStatus moves an order through its status machine
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req order.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.orderService.UpdateStatus(uint(orderID), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated",
		"data":    updated,
	})
}

// GetReceipt streams the order receipt as a PDF
func (h *OrderHandler) GetReceipt(c *gin.Context) {
	ident := middleware.GetIdentity(c)

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	o, err := h.orderService.GetForReceipt(uint(orderID), ident)
	if err != nil {
		respondError(c, err)
		return
	}

	buf, err := h.pdfService.GenerateReceipt(o)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate receipt"})
		return
	}

	filename := fmt.Sprintf("receipt-%s.pdf", o.OrderNumber)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
