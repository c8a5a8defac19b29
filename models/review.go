package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Review struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AppointmentID uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"appointmentId"`
	ManicuristID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"manicuristId"`
	ClientID      *uuid.UUID `gorm:"type:uuid;index" json:"clientId,omitempty"`
	ClientName    string     `json:"clientName"`
	Rating        int        `gorm:"not null" json:"rating"`
	Comment       string     `gorm:"type:text" json:"comment"`
	IsApproved    bool       `gorm:"not null" json:"isApproved"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
