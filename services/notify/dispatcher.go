package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"nailsalon-backend/models"
	"nailsalon-backend/services/booking"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const deliveryTimeout = 30 * time.Second

var _ booking.Notifier = (*Dispatcher)(nil)

// Dispatcher renders appointment notifications from their templates,
// sends them and records the outcome. Notify never blocks the caller.
type Dispatcher struct {
	db     *gorm.DB
	sender Sender
	logger *zap.Logger
	wg     sync.WaitGroup
}

func NewDispatcher(db *gorm.DB, sender Sender, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{db: db, sender: sender, logger: logger}
}

func (d *Dispatcher) Notify(ctx context.Context, kind string, appt models.Appointment) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
		defer cancel()
		if err := d.Deliver(ctx, kind, appt); err != nil {
			d.logger.Warn("notification failed",
				zap.String("kind", kind),
				zap.String("appointment_id", appt.ID.String()),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until every in-flight notification has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Deliver sends one notification synchronously. Disabled kinds and kinds
// without an active template are skipped without error.
func (d *Dispatcher) Deliver(ctx context.Context, kind string, appt models.Appointment) error {
	db := d.db.WithContext(ctx)

	enabled, err := d.enabled(db, kind)
	if err != nil {
		return err
	}
	if !enabled {
		d.logger.Debug("notification disabled", zap.String("kind", kind))
		return nil
	}

	var tmpl models.NotificationTemplate
	if err := db.Where("kind = ? AND is_active = ?", kind, true).First(&tmpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			d.logger.Debug("no active template", zap.String("kind", kind))
			return nil
		}
		return fmt.Errorf("load template: %w", err)
	}

	if appt.Manicurist == nil || appt.Service == nil {
		if err := db.Preload("Manicurist").Preload("Service").First(&appt, "id = ?", appt.ID).Error; err != nil {
			return fmt.Errorf("load appointment: %w", err)
		}
	}

	body := Render(tmpl.Message, appt)
	receipt, sendErr := d.sender.Send(ctx, Message{To: appt.ClientPhone, Body: body})

	entry := models.NotificationLog{
		AppointmentID: appt.ID,
		Kind:          kind,
		Channel:       receipt.Channel,
		Recipient:     appt.ClientPhone,
		Message:       body,
		Status:        "sent",
		ProviderID:    receipt.ProviderID,
		SentAt:        time.Now(),
	}
	if sendErr != nil {
		entry.Status = "failed"
		entry.ErrorMessage = sendErr.Error()
	}
	if err := db.Create(&entry).Error; err != nil {
		d.logger.Error("failed to log notification", zap.String("appointment_id", appt.ID.String()), zap.Error(err))
	}

	if sendErr != nil {
		return booking.Upstream("send notification", sendErr)
	}
	d.logger.Info("notification sent",
		zap.String("kind", kind),
		zap.String("appointment_id", appt.ID.String()),
		zap.String("channel", receipt.Channel),
	)
	return nil
}

func (d *Dispatcher) enabled(db *gorm.DB, kind string) (bool, error) {
	var settings models.SalonSettings
	if err := db.First(&settings, models.SalonSettingsID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("load settings: %w", err)
	}
	if !settings.EnableNotifications {
		return false, nil
	}
	if kind == models.NotificationReminder && !settings.EnableReminders {
		return false, nil
	}
	return true, nil
}

// Render fills the template placeholders from the appointment.
func Render(message string, appt models.Appointment) string {
	manicurist, service := "", ""
	if appt.Manicurist != nil {
		manicurist = appt.Manicurist.Name
	}
	if appt.Service != nil {
		service = appt.Service.Name
	}
	return strings.NewReplacer(
		"[ClientName]", appt.ClientName,
		"[ManicuristName]", manicurist,
		"[ServiceName]", service,
		"[Date]", appt.Date,
		"[Time]", appt.StartTime,
	).Replace(message)
}
