package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NailStyle struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	Description  string     `json:"description"`
	Category     string     `gorm:"default:'General'" json:"category"`
	ImageURL     string     `json:"imageUrl"`
	ServiceID    *uuid.UUID `gorm:"type:uuid;index" json:"serviceId,omitempty"`
	ManicuristID *uuid.UUID `gorm:"type:uuid;index" json:"manicuristId,omitempty"`
	IsActive     bool       `gorm:"not null" json:"isActive"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (n *NailStyle) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
