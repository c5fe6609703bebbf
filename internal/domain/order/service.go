// internal/domain/order/service.go
package order

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/identity"
	"github.com/your-org/marketplace-backend/internal/domain/store"
	"github.com/your-org/marketplace-backend/internal/pkg/apperr"
)

// Service handles order queries and status management
type Service struct {
	db     *gorm.DB
	config *config.Config
	stores *store.Service
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
		stores: store.NewService(db, cfg),
	}
}

// ListRequest represents order list query parameters
type ListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Status    string `form:"status"`
	SortBy    string `form:"sort_by,default=created_at"`
	SortOrder string `form:"sort_order,default=desc"`
}

// ListResponse represents an order list with pagination
type ListResponse struct {
	Orders     []Order `json:"orders"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"total_pages"`
}

// UpdateStatusRequest represents a status transition request
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SalesLogListRequest represents sales log query parameters
type SalesLogListRequest struct {
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=20"`
	StoreID  uint   `form:"store_id"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
}

// SalesLogListResponse represents a sales log list with pagination
type SalesLogListResponse struct {
	Logs       []SalesLog `json:"logs"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
}

// ListForBuyer lists orders placed by the caller, newest first
func (s *Service) ListForBuyer(ident identity.Identity, req *ListRequest) (*ListResponse, error) {
	query := s.scopeBuyer(ident).Model(&Order{})
	return s.list(query, req)
}

// GetForBuyer retrieves one of the caller's orders with its items
func (s *Service) GetForBuyer(ident identity.Identity, orderID uint) (*Order, error) {
	o, err := s.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !o.BelongsTo(ident) {
		return nil, apperr.NotFound("order")
	}
	return o, nil
}

// ListForStore lists a store's orders, owner only
func (s *Service) ListForStore(storeID, userID uint, req *ListRequest) (*ListResponse, error) {
	if _, err := s.stores.GetOwnedStore(storeID, userID); err != nil {
		return nil, err
	}

	query := s.db.Model(&Order{}).Where("store_id = ?", storeID)
	return s.list(query, req)
}

// GetByID retrieves an order with its items
func (s *Service) GetByID(orderID uint) (*Order, error) {
	var o Order
	err := s.db.Preload("Items").First(&o, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order")
		}
		return nil, apperr.Internal("failed to load order", err)
	}
	return &o, nil
}

// GetForReceipt retrieves an order for receipt rendering. Both the
// store owner and the buyer may fetch it.
func (s *Service) GetForReceipt(orderID uint, ident identity.Identity) (*Order, error) {
	o, err := s.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	if o.BelongsTo(ident) {
		return o, nil
	}
	if ident.UserID != nil {
		st, err := s.stores.GetByID(o.StoreID)
		if err == nil && st.IsOwnedBy(*ident.UserID) {
			return o, nil
		}
	}

	return nil, apperr.PermissionDenied("you cannot access this order")
}

// UpdateStatus moves an order through the status machine, store owner only
func (s *Service) UpdateStatus(orderID, userID uint, req *UpdateStatusRequest) (*Order, error) {
	next := Status(req.Status)
	if !ValidStatuses[next] {
		return nil, apperr.Validation(fmt.Sprintf("invalid status: %s", req.Status))
	}

	o, err := s.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	if _, err := s.stores.GetOwnedStore(o.StoreID, userID); err != nil {
		return nil, err
	}

	if !o.CanTransitionTo(next) {
		return nil, apperr.BusinessRule(
			fmt.Sprintf("cannot transition order from %s to %s", o.Status, next))
	}

	if err := s.db.Model(o).Update("status", next).Error; err != nil {
		return nil, apperr.Internal("failed to update order status", err)
	}
	o.Status = next

	return o, nil
}

// ListSalesLogs lists sales log entries with filters, admin only
func (s *Service) ListSalesLogs(req *SalesLogListRequest) (*SalesLogListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&SalesLog{})

	if req.StoreID != 0 {
		query = query.Where("store_id = ?", req.StoreID)
	}
	if req.DateFrom != "" {
		if from, err := time.Parse("2006-01-02", req.DateFrom); err == nil {
			query = query.Where("created_at >= ?", from)
		}
	}
	if req.DateTo != "" {
		if to, err := time.Parse("2006-01-02", req.DateTo); err == nil {
			query = query.Where("created_at < ?", to.Add(24*time.Hour))
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperr.Internal("failed to count sales logs", err)
	}

	var logs []SalesLog
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&logs).Error; err != nil {
		return nil, apperr.Internal("failed to list sales logs", err)
	}

	return &SalesLogListResponse{
		Logs:       logs,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: int((total + int64(req.Limit) - 1) / int64(req.Limit)),
	}, nil
}

// DeleteSalesLog removes a sales log entry, the only mutation the
// append-only log supports
func (s *Service) DeleteSalesLog(logID uint) error {
	result := s.db.Delete(&SalesLog{}, logID)
	if result.Error != nil {
		return apperr.Internal("failed to delete sales log", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("sales log")
	}
	return nil
}

func (s *Service) scopeBuyer(ident identity.Identity) *gorm.DB {
	if ident.UserID != nil {
		return s.db.Where("user_id = ?", *ident.UserID)
	}
	return s.db.Where("session_token = ?", ident.SessionToken)
}

func (s *Service) list(query *gorm.DB, req *ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	if req.Status != "" {
		if !ValidStatuses[Status(req.Status)] {
			return nil, apperr.Validation(fmt.Sprintf("invalid status filter: %s", req.Status))
		}
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperr.Internal("failed to count orders", err)
	}

	var orders []Order
	offset := (req.Page - 1) * req.Limit
	err := query.Preload("Items").
		Order(buildOrderClause(req.SortBy, req.SortOrder)).
		Offset(offset).Limit(req.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, apperr.Internal("failed to list orders", err)
	}

	return &ListResponse{
		Orders:     orders,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: int((total + int64(req.Limit) - 1) / int64(req.Limit)),
	}, nil
}

// buildOrderClause whitelists sortable columns
func buildOrderClause(sortBy, sortOrder string) string {
	allowed := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"total":      true,
		"status":     true,
	}
	if !allowed[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}
