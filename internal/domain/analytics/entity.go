// internal/domain/analytics/entity.go
package analytics

import "time"

// Settings holds platform-wide admin settings, a single row table
type Settings struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PlatformName    string    `gorm:"size:150" json:"platform_name"`
	SupportEmail    string    `gorm:"size:255" json:"support_email"`
	MaintenanceMode bool      `gorm:"default:false" json:"maintenance_mode"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName overrides the table name for Settings
func (Settings) TableName() string {
	return "admin_settings"
}
