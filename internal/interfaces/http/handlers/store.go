// internal/interfaces/http/handlers/store.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/store"
	"github.com/your-org/marketplace-backend/internal/interfaces/http/middleware"
	"github.com/your-org/marketplace-backend/internal/pkg/email"
)

// StoreHandler handles store endpoints
type StoreHandler struct {
	storeService *store.Service
	emailService *email.EmailService
	config       *config.Config
	logger       *logrus.Logger
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(db *gorm.DB, cfg *config.Config, log *logrus.Logger, emailService *email.EmailService) *StoreHandler {
	return &StoreHandler{
		storeService: store.NewService(db, cfg),
		emailService: emailService,
		config:       cfg,
		logger:       log,
	}
}

// ListStores returns all stores, open ones first
func (h *StoreHandler) ListStores(c *gin.Context) {
	stores, err := h.storeService.ListStores()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": stores,
	})
}

// GetStore returns a store by slug
func (h *StoreHandler) GetStore(c *gin.Context) {
	response, err := h.storeService.GetBySlug(c.Param("slug"), callerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": response,
	})
}

// CreateStore registers a new store owned by the caller
func (h *StoreHandler) CreateStore(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req store.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	created, err := h.storeService.CreateStore(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifyAdmin(created)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Store created successfully",
		"data":    created,
	})
}

// notifyAdmin tells the platform admin about a new store. Best effort.
func (h *StoreHandler) notifyAdmin(st *store.Store) {
	err := h.emailService.SendStoreRegisteredNotice(&email.StoreRegisteredData{
		StoreName:  st.Name,
		StoreSlug:  st.Slug,
		OwnerEmail: st.Email,
	})
	if err != nil {
		h.logger.WithError(err).WithField("store_id", st.ID).Warn("store registration notice failed")
	}
}

// UpdateStore updates a store owned by the caller
func (h *StoreHandler) UpdateStore(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	storeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid store ID"})
		return
	}

	var req store.UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.storeService.UpdateStore(uint(storeID), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Store updated successfully",
		"data":    updated,
	})
}

// SetOpen flips the store open flag
func (h *StoreHandler) SetOpen(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	storeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid store ID"})
		return
	}

	var req struct {
		IsOpen *bool `json:"is_open" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.storeService.SetOpen(uint(storeID), userID, *req.IsOpen)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Store availability updated",
		"data":    updated,
	})
}

// AddPixKey registers a pix key on the caller's store
func (h *StoreHandler) AddPixKey(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	storeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid store ID"})
		return
	}

	var req store.AddPixKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	key, err := h.storeService.AddPixKey(uint(storeID), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Pix key added successfully",
		"data":    key,
	})
}

// ListPixKeys returns the pix keys of the caller's store
func (h *StoreHandler) ListPixKeys(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	storeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid store ID"})
		return
	}

	keys, err := h.storeService.ListPixKeys(uint(storeID), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": keys,
	})
}

// DeletePixKey removes a pix key from the caller's store
func (h *StoreHandler) DeletePixKey(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	storeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid store ID"})
		return
	}

	keyID, err := strconv.ParseUint(c.Param("keyId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pix key ID"})
		return
	}

	if err := h.storeService.DeletePixKey(uint(storeID), uint(keyID), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Pix key deleted successfully",
	})
}

// callerID returns the authenticated user ID, or nil for anonymous callers
func callerID(c *gin.Context) *uint {
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		return &userID
	}
	return nil
}
