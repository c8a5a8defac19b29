package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema and seeds singleton rows.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&Manicurist{},
		&Service{},
		&NailStyle{},
		&AvailabilityWindow{},
		&Appointment{},
		&Review{},
		&NotificationLog{},
		&NotificationTemplate{},
		&SalonSettings{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// Backstop for the booking transaction: one active appointment per start.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_active_slot
		ON appointments (manicurist_id, date, start_time)
		WHERE status IN ('pending', 'confirmed')`).Error; err != nil {
		return fmt.Errorf("create active slot index: %w", err)
	}

	return seed(db)
}

func seed(db *gorm.DB) error {
	var settings SalonSettings
	err := db.First(&settings, SalonSettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = SalonSettings{
			ID:                  SalonSettingsID,
			SiteTitle:           "Nail Studio",
			EnableNotifications: true,
			EnableReminders:     true,
		}
		if err := db.Create(&settings).Error; err != nil {
			return fmt.Errorf("seed settings: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	for _, tmpl := range DefaultNotificationTemplates {
		var count int64
		if err := db.Model(&NotificationTemplate{}).Where("kind = ?", tmpl.Kind).Count(&count).Error; err != nil {
			return fmt.Errorf("count templates: %w", err)
		}
		if count > 0 {
			continue
		}
		t := tmpl
		if err := db.Create(&t).Error; err != nil {
			return fmt.Errorf("seed template %s: %w", tmpl.Kind, err)
		}
	}
	return nil
}
