// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/marketplace-backend/internal/config"
	"github.com/your-org/marketplace-backend/internal/domain/order"
	"github.com/your-org/marketplace-backend/internal/domain/product"
	"github.com/your-org/marketplace-backend/internal/domain/store"
	"github.com/your-org/marketplace-backend/internal/domain/user"
	"github.com/your-org/marketplace-backend/internal/pkg/apperr"
)

const dashboardCacheKey = "analytics:dashboard"
const dashboardCacheTTL = 60 * time.Second

// Service computes platform-wide statistics for admins
type Service struct {
	db     *gorm.DB
	redis  *redis.Client
	config *config.Config
}

// NewService creates a new analytics service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		redis:  redisClient,
		config: cfg,
	}
}

// DashboardStats represents the admin dashboard payload
type DashboardStats struct {
	TotalUsers    int64 `json:"total_users"`
	TotalStores   int64 `json:"total_stores"`
	OpenStores    int64 `json:"open_stores"`
	TotalProducts int64 `json:"total_products"`
	TotalOrders   int64 `json:"total_orders"`
	PendingOrders int64 `json:"pending_orders"`

	RevenueToday int64 `json:"revenue_today"`
	RevenueWeek  int64 `json:"revenue_week"`
	RevenueMonth int64 `json:"revenue_month"`

	RecentOrders []order.Order `json:"recent_orders"`

	GeneratedAt time.Time `json:"generated_at"`
}

// SalesReportRow is one day of aggregated sales
type SalesReportRow struct {
	Day     string `json:"day"`
	Orders  int64  `json:"orders"`
	Revenue int64  `json:"revenue"`
}

// SalesReportRequest represents report query parameters
type SalesReportRequest struct {
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	StoreID  uint   `form:"store_id"`
}

// Dashboard returns platform stats, cached in redis for a minute
func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, dashboardCacheKey).Result(); err == nil {
			var stats DashboardStats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.computeDashboard()
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if payload, err := json.Marshal(stats); err == nil {
			s.redis.Set(ctx, dashboardCacheKey, payload, dashboardCacheTTL)
		}
	}

	return stats, nil
}

func (s *Service) computeDashboard() (*DashboardStats, error) {
	stats := &DashboardStats{GeneratedAt: time.Now().UTC()}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalUsers, s.db.Model(&user.User{})},
		{&stats.TotalStores, s.db.Model(&store.Store{})},
		{&stats.OpenStores, s.db.Model(&store.Store{}).Where("is_open = ?", true)},
		{&stats.TotalProducts, s.db.Model(&product.Product{})},
		{&stats.TotalOrders, s.db.Model(&order.Order{})},
		{&stats.PendingOrders, s.db.Model(&order.Order{}).Where("status = ?", order.StatusPending)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, apperr.Internal("failed to compute dashboard counts", err)
		}
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	periods := []struct {
		dest  *int64
		since time.Time
	}{
		{&stats.RevenueToday, today},
		{&stats.RevenueWeek, today.AddDate(0, 0, -7)},
		{&stats.RevenueMonth, today.AddDate(0, -1, 0)},
	}
	for _, p := range periods {
		err := s.db.Model(&order.SalesLog{}).
			Where("created_at >= ?", p.since).
			Select("COALESCE(SUM(total), 0)").
			Scan(p.dest).Error
		if err != nil {
			return nil, apperr.Internal("failed to compute revenue", err)
		}
	}

	err := s.db.Preload("Items").Order("created_at DESC").Limit(5).Find(&stats.RecentOrders).Error
	if err != nil {
		return nil, apperr.Internal("failed to load recent orders", err)
	}

	return stats, nil
}

// SalesReport aggregates sales logs by day for a date range
func (s *Service) SalesReport(req *SalesReportRequest) ([]SalesReportRow, error) {
	query := s.db.Model(&order.SalesLog{})

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

	var rows []SalesReportRow
	err := query.
		Select("DATE(created_at) as day, COUNT(*) as orders, COALESCE(SUM(total), 0) as revenue").
		Group("DATE(created_at)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Internal("failed to build sales report", err)
	}

	return rows, nil
}

// UpdateSettingsRequest represents settings update data
type UpdateSettingsRequest struct {
	PlatformName    *string `json:"platform_name"`
	SupportEmail    *string `json:"support_email" binding:"omitempty,email"`
	MaintenanceMode *bool   `json:"maintenance_mode"`
}

// GetSettings returns the platform settings row, creating it on first use
func (s *Service) GetSettings() (*Settings, error) {
	var settings Settings
	err := s.db.FirstOrCreate(&settings, Settings{ID: 1}).Error
	if err != nil {
		return nil, apperr.Internal("failed to load settings", err)
	}
	return &settings, nil
}

// UpdateSettings modifies the platform settings
func (s *Service) UpdateSettings(req *UpdateSettingsRequest) (*Settings, error) {
	settings, err := s.GetSettings()
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.PlatformName != nil {
		updates["platform_name"] = *req.PlatformName
	}
	if req.SupportEmail != nil {
		updates["support_email"] = *req.SupportEmail
	}
	if req.MaintenanceMode != nil {
		updates["maintenance_mode"] = *req.MaintenanceMode
	}

	if len(updates) > 0 {
		if err := s.db.Model(settings).Updates(updates).Error; err != nil {
			return nil, apperr.Internal("failed to update settings", err)
		}
	}

	return settings, nil
}
