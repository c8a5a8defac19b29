package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nailsalon-backend/models"
	"nailsalon-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Contact struct {
	Name  string
	Email string
	Phone string
}

// NailStyleSelection must carry exactly one of a catalog style or a set of
// uploaded reference images.
type NailStyleSelection struct {
	NailStyleID       *uuid.UUID
	ReferenceImageIDs []string
}

type BookingRequest struct {
	ManicuristID uuid.UUID
	ClientID     *uuid.UUID
	ServiceID    uuid.UUID
	Date         string
	StartTime    string
	NailStyle    NailStyleSelection
	Contact      Contact
	Notes        string
}

func (r BookingRequest) validate() error {
	if strings.TrimSpace(r.Contact.Name) == "" {
		return validation("client name is required")
	}
	if strings.TrimSpace(r.Contact.Phone) == "" {
		return validation("client phone is required")
	}
	if !utils.ValidatePhone(r.Contact.Phone) {
		return validation("client phone must be in international format")
	}
	if r.Contact.Email != "" && !utils.ValidateEmail(r.Contact.Email) {
		return validation("client email is invalid")
	}
	if r.ManicuristID == uuid.Nil {
		return validation("manicurist is required")
	}
	if r.ServiceID == uuid.Nil {
		return validation("service is required")
	}

	hasStyle := r.NailStyle.NailStyleID != nil && *r.NailStyle.NailStyleID != uuid.Nil
	hasImages := len(r.NailStyle.ReferenceImageIDs) > 0
	if hasStyle == hasImages {
		return validation("select exactly one of a predefined nail style or reference images")
	}
	for _, id := range r.NailStyle.ReferenceImageIDs {
		if strings.TrimSpace(id) == "" {
			return validation("reference image ids must not be empty")
		}
	}
	return nil
}

// CreateAppointment validates the request and reserves the time range
// atomically. Two concurrent requests for overlapping ranges never both
// succeed; the loser gets a SlotConflict.
func (e *Engine) CreateAppointment(ctx context.Context, req BookingRequest) (*models.Appointment, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	day, err := utils.ParseDate(req.Date, e.loc)
	if err != nil {
		return nil, validation("%v", err)
	}
	if req.Date < utils.Today(e.now(), e.loc) {
		return nil, validation("date %s is in the past", req.Date)
	}
	start, err := utils.ParseClock(req.StartTime)
	if err != nil {
		return nil, validation("%v", err)
	}

	db := e.db.WithContext(ctx)
	manicurist, err := e.activeManicurist(db, req.ManicuristID)
	if err != nil {
		return nil, err
	}

	var service models.Service
	if err := db.First(&service, "id = ?", req.ServiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("service %s not found", req.ServiceID)
		}
		return nil, err
	}
	if !service.IsActive {
		return nil, notFound("service %s not found", req.ServiceID)
	}
	if service.Duration <= 0 {
		return nil, validation("service %s has no duration", service.Name)
	}
	end := start + service.Duration
	if end > utils.MinutesPerDay {
		return nil, validation("appointment must end on the same day")
	}

	var nailStyle *models.NailStyle
	if id := req.NailStyle.NailStyleID; id != nil {
		var ns models.NailStyle
		if err := db.First(&ns, "id = ?", *id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, notFound("nail style %s not found", *id)
			}
			return nil, err
		}
		if !ns.IsActive {
			return nil, notFound("nail style %s not found", *id)
		}
		nailStyle = &ns
	}

	release, err := e.acquireLock(ctx, lockKey(req.ManicuristID, req.Date))
	if err != nil {
		return nil, err
	}
	defer release()

	status := models.StatusPending
	if e.autoConfirm {
		status = models.StatusConfirmed
	}
	appt := models.Appointment{
		ManicuristID: req.ManicuristID,
		ClientID:     req.ClientID,
		ServiceID:    service.ID,
		Date:         req.Date,
		StartTime:    utils.FormatClock(start),
		EndTime:      utils.FormatClock(end),
		Status:       status,
		ClientName:   strings.TrimSpace(req.Contact.Name),
		ClientEmail:  strings.TrimSpace(req.Contact.Email),
		ClientPhone:  utils.NormalizePhone(req.Contact.Phone),
		Notes:        req.Notes,
	}
	if nailStyle != nil {
		appt.NailStyleID = &nailStyle.ID
	} else {
		appt.ReferenceImageIDs = datatypes.JSONSlice[string](req.NailStyle.ReferenceImageIDs)
	}
	if status == models.StatusConfirmed {
		now := e.now()
		appt.ConfirmedAt = &now
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		// Serializes concurrent bookings for this manicurist on Postgres.
		var locked models.Manicurist
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").First(&locked, "id = ?", req.ManicuristID).Error; err != nil {
			return fmt.Errorf("lock manicurist: %w", err)
		}

		windows, err := effectiveWindows(tx, req.ManicuristID, req.Date, int(day.Weekday()))
		if err != nil {
			return err
		}
		if !fitsWindow(windows, start, end, e.granularity) {
			return slotConflict("%s %s-%s is outside the manicurist's availability", req.Date, appt.StartTime, appt.EndTime)
		}

		var overlapping int64
		if err := tx.Model(&models.Appointment{}).
			Where("manicurist_id = ? AND date = ? AND status IN ?", req.ManicuristID, req.Date, models.BlockingStatuses).
			Where("start_time < ? AND end_time > ?", appt.EndTime, appt.StartTime).
			Count(&overlapping).Error; err != nil {
			return fmt.Errorf("check overlap: %w", err)
		}
		if overlapping > 0 {
			return slotConflict("%s %s-%s is already booked", req.Date, appt.StartTime, appt.EndTime)
		}

		if err := tx.Create(&appt).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return slotConflict("%s %s is already booked", req.Date, appt.StartTime)
			}
			return fmt.Errorf("create appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	appt.Manicurist = manicurist
	appt.Service = &service
	appt.NailStyle = nailStyle

	e.logger.Info("appointment created",
		zap.String("appointment_id", appt.ID.String()),
		zap.String("manicurist_id", appt.ManicuristID.String()),
		zap.String("date", appt.Date),
		zap.String("start", appt.StartTime),
		zap.String("status", appt.Status),
	)

	kind := models.NotificationBooked
	if appt.Status == models.StatusConfirmed {
		kind = models.NotificationConfirmation
	}
	e.notify(ctx, kind, appt)
	return &appt, nil
}

// fitsWindow reports whether [start, end) lies inside one window and start
// sits on that window's slot grid.
func fitsWindow(windows []window, start, end, granularity int) bool {
	for _, w := range windows {
		if start >= w.start && end <= w.end && (start-w.start)%granularity == 0 {
			return true
		}
	}
	return false
}
