// internal/interfaces/http/handlers/admin.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/analytics"
	"github.com/your-org/marketplace-backend/internal/domain/order"
	"github.com/your-org/marketplace-backend/internal/domain/user"
	"github.com/your-org/marketplace-backend/internal/interfaces/http/middleware"
)

// AdminHandler handles admin-only endpoints
type AdminHandler struct {
	analyticsService *analytics.Service
	orderService     *order.Service
	adminService     *user.AdminService
	config           *config.Config
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *AdminHandler {
	return &AdminHandler{
		analyticsService: analytics.NewService(db, redisClient, cfg),
		orderService:     order.NewService(db, cfg),
		adminService:     user.NewAdminService(db, cfg),
		config:           cfg,
	}
}

// GetDashboard returns platform statistics
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	stats, err := h.analyticsService.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": stats,
	})
}

// GetSalesReport returns daily aggregated sales
func (h *AdminHandler) GetSalesReport(c *gin.Context) {
	var req analytics.SalesReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	rows, err := h.analyticsService.SalesReport(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": rows,
	})
}

// ListSalesLogs returns the immutable sales records
func (h *AdminHandler) ListSalesLogs(c *gin.Context) {
	var req order.SalesLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.orderService.ListSalesLogs(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": response,
	})
}

// DeleteSalesLog removes one sales record
func (h *AdminHandler) DeleteSalesLog(c *gin.Context) {
	logID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sales log ID"})
		return
	}

	if err := h.orderService.DeleteSalesLog(uint(logID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sales log deleted successfully",
	})
}

// GetSettings returns platform settings
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.analyticsService.GetSettings()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": settings,
	})
}

// UpdateSettings modifies platform settings
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req analytics.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	settings, err := h.analyticsService.UpdateSettings(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Settings updated successfully",
		"data":    settings,
	})
}

// ListUsers returns users with search and pagination
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var req user.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.adminService.GetUsers(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": response,
	})
}

// UpdateUserStatus activates or deactivates a user account
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	adminID, _ := middleware.GetUserIDFromContext(c)

	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req user.UserStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.adminService.UpdateUserStatus(uint(userID), &req, adminID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User status updated successfully",
	})
}
