package controllers

import (
	"net/http"

	"nailsalon-backend/models"
	"nailsalon-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AvailabilityInput describes one window. Recurring windows carry
// dayOfWeek (0 = Sunday), one-off windows carry specificDate.
type AvailabilityInput struct {
	ManicuristID *uuid.UUID `json:"manicuristId"`
	IsRecurring  bool       `json:"isRecurring"`
	DayOfWeek    *int       `json:"dayOfWeek"`
	SpecificDate *string    `json:"specificDate"`
	StartTime    string     `json:"startTime" binding:"required"`
	EndTime      string     `json:"endTime" binding:"required"`
	IsAvailable  *bool      `json:"isAvailable"`
}

type AvailabilityController struct {
	db *gorm.DB
}

func NewAvailabilityController(db *gorm.DB) *AvailabilityController {
	return &AvailabilityController{db: db}
}

// apply fills w from input and returns a client-facing message when the
// input is inconsistent.
func (input AvailabilityInput) apply(w *models.AvailabilityWindow) string {
	start, err := utils.ParseClock(input.StartTime)
	if err != nil || start >= utils.MinutesPerDay {
		return "startTime must be HH:MM"
	}
	end, err := utils.ParseClock(input.EndTime)
	if err != nil {
		return "endTime must be HH:MM"
	}
	if end <= start {
		return "endTime must be after startTime"
	}

	if input.IsRecurring {
		if input.DayOfWeek == nil || *input.DayOfWeek < 0 || *input.DayOfWeek > 6 {
			return "dayOfWeek must be between 0 (Sunday) and 6 (Saturday)"
		}
		day := *input.DayOfWeek
		w.DayOfWeek = &day
		w.SpecificDate = nil
	} else {
		if input.SpecificDate == nil {
			return "specificDate is required for one-off windows"
		}
		if _, err := utils.ParseDate(*input.SpecificDate, nil); err != nil {
			return "specificDate must be YYYY-MM-DD"
		}
		date := *input.SpecificDate
		w.SpecificDate = &date
		w.DayOfWeek = nil
	}

	w.StartTime = utils.FormatClock(start)
	w.EndTime = utils.FormatClock(end)
	w.IsAvailable = true
	if input.IsAvailable != nil {
		w.IsAvailable = *input.IsAvailable
	}
	return ""
}

// resolveManicurist picks the target manicurist: always the caller's own
// profile for manicurists, the requested one for admins.
func (a *AvailabilityController) resolveManicurist(c *gin.Context, requested *uuid.UUID) (uuid.UUID, bool) {
	if currentRole(c) == models.RoleManicurist {
		own, ok := ownManicurist(c, a.db)
		if !ok {
			return uuid.Nil, false
		}
		if requested != nil && *requested != uuid.Nil && *requested != own.ID {
			utils.RespondWithError(c, http.StatusForbidden, "Insufficient permissions")
			return uuid.Nil, false
		}
		return own.ID, true
	}

	if requested == nil || *requested == uuid.Nil {
		utils.RespondWithError(c, http.StatusBadRequest, "manicuristId is required")
		return uuid.Nil, false
	}
	var count int64
	if err := a.db.WithContext(c.Request.Context()).Model(&models.Manicurist{}).
		Where("id = ?", *requested).Count(&count).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return uuid.Nil, false
	}
	if count == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Manicurist not found")
		return uuid.Nil, false
	}
	return *requested, true
}

// ownedWindow loads a window the caller may modify.
func (a *AvailabilityController) ownedWindow(c *gin.Context) (*models.AvailabilityWindow, bool) {
	id, ok := paramUUID(c, "id", "availability")
	if !ok {
		return nil, false
	}

	var w models.AvailabilityWindow
	if err := a.db.WithContext(c.Request.Context()).First(&w, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Availability not found")
		return nil, false
	}

	if currentRole(c) == models.RoleManicurist {
		own, ok := ownManicurist(c, a.db)
		if !ok {
			return nil, false
		}
		if own.ID != w.ManicuristID {
			utils.RespondWithError(c, http.StatusNotFound, "Availability not found")
			return nil, false
		}
	}
	return &w, true
}

func (a *AvailabilityController) GetManicuristAvailability(c *gin.Context) {
	id, ok := paramUUID(c, "id", "manicurist")
	if !ok {
		return
	}

	q := a.db.WithContext(c.Request.Context()).
		Where("manicurist_id = ?", id).
		Order("specific_date, day_of_week, start_time")
	if from := c.Query("from"); from != "" {
		q = q.Where("specific_date IS NULL OR specific_date >= ?", from)
	}

	var windows []models.AvailabilityWindow
	if err := q.Find(&windows).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve availability")
		return
	}
	c.JSON(http.StatusOK, windows)
}

func (a *AvailabilityController) CreateAvailability(c *gin.Context) {
	var input AvailabilityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	manicuristID, ok := a.resolveManicurist(c, input.ManicuristID)
	if !ok {
		return
	}

	w := models.AvailabilityWindow{ManicuristID: manicuristID}
	if msg := input.apply(&w); msg != "" {
		utils.RespondWithError(c, http.StatusBadRequest, msg)
		return
	}

	if err := a.db.WithContext(c.Request.Context()).Create(&w).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create availability")
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (a *AvailabilityController) UpdateAvailability(c *gin.Context) {
	w, ok := a.ownedWindow(c)
	if !ok {
		return
	}

	var input AvailabilityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if msg := input.apply(w); msg != "" {
		utils.RespondWithError(c, http.StatusBadRequest, msg)
		return
	}

	if err := a.db.WithContext(c.Request.Context()).Save(w).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update availability")
		return
	}
	c.JSON(http.StatusOK, w)
}

func (a *AvailabilityController) DeleteAvailability(c *gin.Context) {
	w, ok := a.ownedWindow(c)
	if !ok {
		return
	}

	if err := a.db.WithContext(c.Request.Context()).Delete(w).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete availability")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Availability deleted successfully"})
}
