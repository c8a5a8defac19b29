package booking

import (
	"context"
	"errors"
	"fmt"

	"nailsalon-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RateAppointment records the client's rating of a completed appointment
// and files an unapproved review.
func (e *Engine) RateAppointment(ctx context.Context, id, clientID uuid.UUID, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, validation("rating must be between 1 and 5")
	}

	var review models.Review
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var appt models.Appointment
		if err := tx.First(&appt, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("appointment %s not found", id)
			}
			return err
		}
		if appt.ClientID == nil || *appt.ClientID != clientID {
			return notFound("appointment %s not found", id)
		}
		if appt.Status != models.StatusCompleted {
			return validation("only completed appointments can be rated")
		}
		if appt.Rating != nil {
			return validation("appointment already rated")
		}

		res := tx.Model(&models.Appointment{}).
			Where("id = ? AND rating IS NULL", id).
			Update("rating", rating)
		if res.Error != nil {
			return fmt.Errorf("update rating: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return validation("appointment already rated")
		}

		review = models.Review{
			AppointmentID: appt.ID,
			ManicuristID:  appt.ManicuristID,
			ClientID:      appt.ClientID,
			ClientName:    appt.ClientName,
			Rating:        rating,
			Comment:       comment,
		}
		if err := tx.Create(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return validation("appointment already rated")
			}
			return fmt.Errorf("create review: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// AddManicuristNote stores a private note on one of the manicurist's own
// appointments. Appointments of other manicurists are reported as missing.
func (e *Engine) AddManicuristNote(ctx context.Context, id, manicuristID uuid.UUID, note string) (*models.Appointment, error) {
	db := e.db.WithContext(ctx)
	res := db.Model(&models.Appointment{}).
		Where("id = ? AND manicurist_id = ?", id, manicuristID).
		Update("manicurist_note", note)
	if res.Error != nil {
		return nil, fmt.Errorf("update note: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFound("appointment %s not found", id)
	}
	return e.GetAppointment(ctx, id)
}

// SendReminder queues a reminder for an upcoming appointment.
func (e *Engine) SendReminder(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	appt, err := e.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != models.StatusPending && appt.Status != models.StatusConfirmed {
		return nil, validation("reminders can only be sent for pending or confirmed appointments")
	}
	e.notify(ctx, models.NotificationReminder, *appt)
	return appt, nil
}
