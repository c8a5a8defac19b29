package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationTemplate holds the message body for one notification kind.
// Placeholders: [ClientName], [ManicuristName], [ServiceName], [Date], [Time].
type NotificationTemplate struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Kind      string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"kind"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsActive  bool      `gorm:"not null" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *NotificationTemplate) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

var DefaultNotificationTemplates = []NotificationTemplate{
	{
		Kind:     NotificationBooked,
		Message:  "Hi [ClientName], we received your request for [ServiceName] with [ManicuristName] on [Date] at [Time]. We will confirm it shortly.",
		IsActive: true,
	},
	{
		Kind:     NotificationConfirmation,
		Message:  "Hi [ClientName], your [ServiceName] with [ManicuristName] on [Date] at [Time] is confirmed.",
		IsActive: true,
	},
	{
		Kind:     NotificationReminder,
		Message:  "Hi [ClientName], a reminder of your [ServiceName] with [ManicuristName] tomorrow, [Date] at [Time].",
		IsActive: true,
	},
	{
		Kind:     NotificationCancellation,
		Message:  "Hi [ClientName], your [ServiceName] on [Date] at [Time] has been cancelled.",
		IsActive: true,
	},
}
