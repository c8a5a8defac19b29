package controllers

import (
	"net/http"

	"nailsalon-backend/models"
	"nailsalon-backend/services/booking"
	"nailsalon-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DashboardOverview struct {
	Today             string               `json:"today"`
	TodayCount        int64                `json:"todayCount"`
	PendingCount      int64                `json:"pendingCount"`
	ConfirmedCount    int64                `json:"confirmedCount"`
	CompletedCount    int64                `json:"completedCount"`
	CancelledCount    int64                `json:"cancelledCount"`
	UpcomingCount     int64                `json:"upcomingCount"`
	NextAppointments  []models.Appointment `json:"nextAppointments"`
	ActiveManicurists int64                `json:"activeManicurists,omitempty"`
	ActiveServices    int64                `json:"activeServices,omitempty"`
	PendingReviews    int64                `json:"pendingReviews,omitempty"`
}

type DashboardController struct {
	db     *gorm.DB
	engine *booking.Engine
}

func NewDashboardController(db *gorm.DB, engine *booking.Engine) *DashboardController {
	return &DashboardController{db: db, engine: engine}
}

// GetDashboardOverview returns appointment counts scoped to the caller:
// own bookings for clients, own calendar for manicurists, the whole salon
// for admins.
func (d *DashboardController) GetDashboardOverview(c *gin.Context) {
	db := d.db.WithContext(c.Request.Context())
	scoped := db.Model(&models.Appointment{})

	role := currentRole(c)
	switch role {
	case models.RoleClient:
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		scoped = scoped.Where("client_id = ?", userID)
	case models.RoleManicurist:
		own, ok := ownManicurist(c, d.db)
		if !ok {
			return
		}
		scoped = scoped.Where("manicurist_id = ?", own.ID)
	}

	today := utils.Today(d.engine.Now(), d.engine.Location())
	overview := DashboardOverview{Today: today, NextAppointments: []models.Appointment{}}

	counts := []struct {
		dst   *int64
		query string
		args  []interface{}
	}{
		{&overview.TodayCount, "date = ? AND status IN ?", []interface{}{today, models.BlockingStatuses}},
		{&overview.PendingCount, "status = ?", []interface{}{models.StatusPending}},
		{&overview.ConfirmedCount, "status = ?", []interface{}{models.StatusConfirmed}},
		{&overview.CompletedCount, "status = ?", []interface{}{models.StatusCompleted}},
		{&overview.CancelledCount, "status = ?", []interface{}{models.StatusCancelled}},
		{&overview.UpcomingCount, "date >= ? AND status IN ?", []interface{}{today, models.BlockingStatuses}},
	}
	for _, q := range counts {
		if err := scoped.Session(&gorm.Session{}).Where(q.query, q.args...).Count(q.dst).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load dashboard")
			return
		}
	}

	if err := scoped.Session(&gorm.Session{}).
		Preload("Manicurist").Preload("Service").
		Where("date >= ? AND status IN ?", today, models.BlockingStatuses).
		Order("date ASC").Order("start_time ASC").
		Limit(5).
		Find(&overview.NextAppointments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	if role == models.RoleAdmin {
		if err := db.Model(&models.Manicurist{}).Where("is_active = ?", true).Count(&overview.ActiveManicurists).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load dashboard")
			return
		}
		if err := db.Model(&models.Service{}).Where("is_active = ?", true).Count(&overview.ActiveServices).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load dashboard")
			return
		}
		if err := db.Model(&models.Review{}).Where("is_approved = ?", false).Count(&overview.PendingReviews).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load dashboard")
			return
		}
	}

	c.JSON(http.StatusOK, overview)
}
