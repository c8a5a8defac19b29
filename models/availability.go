package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AvailabilityWindow is either recurring (DayOfWeek set, 0 = Sunday) or
// bound to one calendar date (SpecificDate set, "2006-01-02"). Times are
// "15:04" strings so they compare lexicographically in SQL.
type AvailabilityWindow struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ManicuristID uuid.UUID `gorm:"type:uuid;index;not null" json:"manicuristId"`

	DayOfWeek    *int    `gorm:"index" json:"dayOfWeek,omitempty"`
	SpecificDate *string `gorm:"type:varchar(10);index" json:"specificDate,omitempty"`

	StartTime   string `gorm:"type:varchar(5);not null" json:"startTime"`
	EndTime     string `gorm:"type:varchar(5);not null" json:"endTime"`
	IsAvailable bool   `gorm:"not null" json:"isAvailable"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (w *AvailabilityWindow) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return
}

func (w AvailabilityWindow) IsRecurring() bool {
	return w.SpecificDate == nil
}
