package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// BlockingStatuses are the statuses that hold a time range on the calendar.
var BlockingStatuses = []string{StatusPending, StatusConfirmed}

type Appointment struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ManicuristID uuid.UUID  `gorm:"type:uuid;index:idx_appointments_manicurist_date,priority:1;not null" json:"manicuristId"`
	ClientID     *uuid.UUID `gorm:"type:uuid;index" json:"clientId,omitempty"`
	ServiceID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"serviceId"`

	Date      string `gorm:"type:varchar(10);index:idx_appointments_manicurist_date,priority:2;not null" json:"date"`
	StartTime string `gorm:"type:varchar(5);not null" json:"startTime"`
	EndTime   string `gorm:"type:varchar(5);not null" json:"endTime"`
	Status    string `gorm:"type:varchar(20);index;not null" json:"status"`

	NailStyleID       *uuid.UUID                  `gorm:"type:uuid" json:"nailStyleId,omitempty"`
	ReferenceImageIDs datatypes.JSONSlice[string] `json:"referenceImageIds,omitempty"`

	ClientName  string `gorm:"not null" json:"clientName"`
	ClientEmail string `json:"clientEmail"`
	ClientPhone string `gorm:"not null" json:"clientPhone"`

	Notes          string `gorm:"type:text" json:"notes"`
	ManicuristNote string `gorm:"type:text" json:"manicuristNote"`
	Rating         *int   `json:"rating,omitempty"`

	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`

	Manicurist *Manicurist `gorm:"foreignKey:ManicuristID" json:"manicurist,omitempty"`
	Service    *Service    `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	NailStyle  *NailStyle  `gorm:"foreignKey:NailStyleID" json:"nailStyle,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}
