package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Manicurist struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"userId,omitempty"`

	Name      string `gorm:"not null" json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Specialty string `json:"specialty"`
	Bio       string `gorm:"type:text" json:"bio"`
	AvatarURL string `json:"avatarUrl"`
	IsActive  bool   `gorm:"not null" json:"isActive"`

	Services []Service `gorm:"many2many:manicurist_services;" json:"services,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (m *Manicurist) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
