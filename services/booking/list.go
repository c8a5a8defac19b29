package booking

import (
	"context"
	"errors"
	"fmt"

	"nailsalon-backend/models"
	"nailsalon-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentFilter struct {
	ManicuristID *uuid.UUID
	ClientID     *uuid.UUID
	Statuses     []string
	From         string // inclusive, YYYY-MM-DD
	To           string // inclusive, YYYY-MM-DD
	Page         int
	PageSize     int
}

// ListAppointments returns one page of appointments ordered by date and
// start time.
func (e *Engine) ListAppointments(ctx context.Context, f AppointmentFilter) (utils.Page[models.Appointment], error) {
	page, pageSize := utils.NormalizePage(f.Page, f.PageSize)

	q := e.db.WithContext(ctx).Model(&models.Appointment{})
	if f.ManicuristID != nil {
		q = q.Where("manicurist_id = ?", *f.ManicuristID)
	}
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if len(f.Statuses) > 0 {
		for _, s := range f.Statuses {
			if !models.ValidStatus(s) {
				return utils.Page[models.Appointment]{}, validation("unknown status %q", s)
			}
		}
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.From != "" {
		if _, err := utils.ParseDate(f.From, e.loc); err != nil {
			return utils.Page[models.Appointment]{}, validation("%v", err)
		}
		q = q.Where("date >= ?", f.From)
	}
	if f.To != "" {
		if _, err := utils.ParseDate(f.To, e.loc); err != nil {
			return utils.Page[models.Appointment]{}, validation("%v", err)
		}
		q = q.Where("date <= ?", f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return utils.Page[models.Appointment]{}, fmt.Errorf("count appointments: %w", err)
	}

	var items []models.Appointment
	if err := q.Preload("Manicurist").Preload("Service").Preload("NailStyle").
		Order("date ASC").Order("start_time ASC").
		Offset(utils.Offset(page, pageSize)).Limit(pageSize).
		Find(&items).Error; err != nil {
		return utils.Page[models.Appointment]{}, fmt.Errorf("list appointments: %w", err)
	}

	return utils.NewPage(items, page, pageSize, total), nil
}

func (e *Engine) GetAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var appt models.Appointment
	err := e.db.WithContext(ctx).
		Preload("Manicurist").Preload("Service").Preload("NailStyle").
		First(&appt, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("appointment %s not found", id)
		}
		return nil, err
	}
	return &appt, nil
}
