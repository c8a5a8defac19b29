package models

import "time"

const SalonSettingsID = 1

// SalonSettings is a single row holding salon-wide preferences.
type SalonSettings struct {
	ID                  uint      `gorm:"primaryKey" json:"-"`
	SiteTitle           string    `json:"siteTitle"`
	SiteDescription     string    `json:"siteDescription"`
	ContactEmail        string    `json:"contactEmail"`
	ContactPhone        string    `json:"contactPhone"`
	Address             string    `json:"address"`
	EnableNotifications bool      `gorm:"not null" json:"enableNotifications"`
	EnableReminders     bool      `gorm:"not null" json:"enableReminders"`
	UpdatedAt           time.Time `json:"updatedAt"`
}
