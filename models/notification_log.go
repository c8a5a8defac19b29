package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationBooked       = "booked"
	NotificationConfirmation = "confirmation"
	NotificationReminder     = "reminder"
	NotificationCancellation = "cancellation"
)

type NotificationLog struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AppointmentID uuid.UUID `gorm:"type:uuid;index;not null" json:"appointmentId"`
	Kind          string    `gorm:"type:varchar(20)" json:"kind"`    // booked, confirmation, reminder, cancellation
	Channel       string    `gorm:"type:varchar(20)" json:"channel"` // whatsapp, sms
	Recipient     string    `json:"recipient"`
	Message       string    `gorm:"type:text" json:"message"`
	Status        string    `gorm:"type:varchar(20)" json:"status"` // sent, failed, skipped
	ProviderID    string    `json:"providerId"`
	ErrorMessage  string    `gorm:"type:text" json:"errorMessage"`
	SentAt        time.Time `json:"sentAt"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
