package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nailsalon-backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// transitions lists the allowed status changes. Completed and cancelled are
// terminal.
var transitions = map[string][]string{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusCancelled, models.StatusCompleted},
}

func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ChangeStatus moves an appointment along its lifecycle. The update is
// conditional on the status read, so a concurrent change wins and this
// call reports InvalidTransition.
func (e *Engine) ChangeStatus(ctx context.Context, id uuid.UUID, newStatus string) (*models.Appointment, error) {
	if !models.ValidStatus(newStatus) {
		return nil, validation("unknown status %q", newStatus)
	}

	var appt models.Appointment
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appt, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("appointment %s not found", id)
			}
			return err
		}
		from := appt.Status
		if !CanTransition(from, newStatus) {
			return invalidTransition(from, newStatus)
		}

		updates := map[string]interface{}{"status": newStatus}
		now := e.now()
		switch newStatus {
		case models.StatusConfirmed:
			updates["confirmed_at"] = now
		case models.StatusCompleted:
			updates["completed_at"] = now
		case models.StatusCancelled:
			updates["cancelled_at"] = now
		}

		res := tx.Model(&models.Appointment{}).
			Where("id = ? AND status = ?", id, from).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("update status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return invalidTransition(from, newStatus)
		}

		return tx.Preload("Manicurist").Preload("Service").Preload("NailStyle").
			First(&appt, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("appointment status changed",
		zap.String("appointment_id", id.String()),
		zap.String("status", newStatus),
	)

	switch newStatus {
	case models.StatusConfirmed:
		e.notify(ctx, models.NotificationConfirmation, appt)
	case models.StatusCancelled:
		e.notify(ctx, models.NotificationCancellation, appt)
	}
	return &appt, nil
}

// Now returns the current time on the engine clock.
func (e *Engine) Now() time.Time {
	return e.now()
}
