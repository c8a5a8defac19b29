package controllers

import (
	"fmt"
	"net/http"
	"time"

	"nailsalon-backend/models"
	"nailsalon-backend/utils"

	ical "github.com/arran4/golang-ical"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const calendarDays = 60

// GetCalendar serves the manicurist's upcoming appointments as an iCalendar
// feed. Manicurists may only read their own feed.
func (m *ManicuristController) GetCalendar(c *gin.Context) {
	id, ok := paramUUID(c, "id", "manicurist")
	if !ok {
		return
	}
	if currentRole(c) == models.RoleManicurist {
		own, ok := ownManicurist(c, m.db)
		if !ok {
			return
		}
		if own.ID != id {
			utils.RespondWithError(c, http.StatusForbidden, "Insufficient permissions")
			return
		}
	}

	db := m.db.WithContext(c.Request.Context())
	var manicurist models.Manicurist
	if err := db.First(&manicurist, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Manicurist not found")
		return
	}

	loc := m.engine.Location()
	from := utils.Today(m.engine.Now(), loc)
	start, _ := utils.ParseDate(from, loc)
	to := utils.FormatDate(start.AddDate(0, 0, calendarDays))

	var appts []models.Appointment
	err := db.Preload("Service").
		Where("manicurist_id = ? AND date >= ? AND date <= ? AND status IN ?", id, from, to, models.BlockingStatuses).
		Order("date, start_time").
		Find(&appts).Error
	if err != nil {
		respondDBError(c, err, "Manicurist not found")
		return
	}

	cal, err := buildCalendar(manicurist, appts, loc, m.engine.Now())
	if err != nil {
		m.logger.Error("calendar build failed", zap.String("manicurist_id", id.String()), zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to build calendar")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "appointments.ics"))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(cal.Serialize()))
}

func buildCalendar(manicurist models.Manicurist, appts []models.Appointment, loc *time.Location, now time.Time) (*ical.Calendar, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//nailsalon-backend//appointments//EN")
	cal.SetXWRCalName(manicurist.Name)

	for _, a := range appts {
		start, err := appointmentTime(a.Date, a.StartTime, loc)
		if err != nil {
			return nil, err
		}
		end, err := appointmentTime(a.Date, a.EndTime, loc)
		if err != nil {
			return nil, err
		}

		summary := a.ClientName
		if a.Service != nil {
			summary = a.Service.Name + " - " + a.ClientName
		}

		ev := cal.AddEvent(appointmentUID(a.ID))
		ev.SetDtStampTime(now.UTC())
		ev.SetStartAt(start.UTC())
		ev.SetEndAt(end.UTC())
		ev.SetSummary(summary)
		ev.SetDescription(fmt.Sprintf("Status: %s\nPhone: %s\n%s", a.Status, a.ClientPhone, a.Notes))
	}
	return cal, nil
}

func appointmentTime(date, clock string, loc *time.Location) (time.Time, error) {
	day, err := utils.ParseDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	minutes, err := utils.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(minutes) * time.Minute), nil
}

func appointmentUID(id uuid.UUID) string {
	return id.String() + "@nailsalon"
}
