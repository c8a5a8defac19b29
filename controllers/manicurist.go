package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"nailsalon-backend/models"
	"nailsalon-backend/services/booking"
	"nailsalon-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateManicuristInput struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone"`
	Specialty string `json:"specialty"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatarUrl"`
	// Password, when set, creates a login for the manicurist.
	Password string `json:"password" binding:"omitempty,min=8"`
}

type UpdateManicuristInput struct {
	Name      *string `json:"name"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone"`
	Specialty *string `json:"specialty"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatarUrl"`
	IsActive  *bool   `json:"isActive"`
}

type AssignServiceInput struct {
	ServiceID uuid.UUID `json:"serviceId" binding:"required"`
}

type ManicuristController struct {
	db     *gorm.DB
	engine *booking.Engine
	logger *zap.Logger
}

func NewManicuristController(db *gorm.DB, engine *booking.Engine, logger *zap.Logger) *ManicuristController {
	return &ManicuristController{db: db, engine: engine, logger: logger}
}

func (m *ManicuristController) GetManicurists(c *gin.Context) {
	q := m.db.WithContext(c.Request.Context()).Order("name")
	if !(currentRole(c) == models.RoleAdmin && c.Query("all") == "true") {
		q = q.Where("is_active = ?", true)
	}
	if raw := c.Query("serviceId"); raw != "" {
		serviceID, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
			return
		}
		q = q.Where("id IN (?)", m.db.Table("manicurist_services").
			Select("manicurist_id").Where("service_id = ?", serviceID))
	}

	var manicurists []models.Manicurist
	if err := q.Find(&manicurists).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve manicurists")
		return
	}
	c.JSON(http.StatusOK, manicurists)
}

func (m *ManicuristController) GetManicurist(c *gin.Context) {
	id, ok := paramUUID(c, "id", "manicurist")
	if !ok {
		return
	}

	var manicurist models.Manicurist
	err := m.db.WithContext(c.Request.Context()).
		Preload("Services", "is_active = ?", true).
		First(&manicurist, "id = ?", id).Error
	if err != nil {
		respondDBError(c, err, "Manicurist not found")
		return
	}
	if !manicurist.IsActive && currentRole(c) != models.RoleAdmin {
		utils.RespondWithError(c, http.StatusNotFound, "Manicurist not found")
		return
	}
	c.JSON(http.StatusOK, manicurist)
}

// CreateManicurist adds a manicurist profile and, when a password is given,
// a linked user account with the manicurist role.
func (m *ManicuristController) CreateManicurist(c *gin.Context) {
	var input CreateManicuristInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	phone := utils.NormalizePhone(input.Phone)
	if phone != "" && !utils.ValidatePhone(phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Phone must be in international format")
		return
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if input.Password != "" && email == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Email is required to create a login")
		return
	}

	manicurist := models.Manicurist{
		Name:      strings.TrimSpace(input.Name),
		Email:     email,
		Phone:     phone,
		Specialty: input.Specialty,
		Bio:       input.Bio,
		AvatarURL: input.AvatarURL,
		IsActive:  true,
	}

	err := m.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if input.Password != "" {
			user := models.User{
				Email:    email,
				Phone:    phone,
				Name:     manicurist.Name,
				Password: input.Password,
				Role:     models.RoleManicurist,
				IsActive: true,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			manicurist.UserID = &user.ID
		}
		return tx.Create(&manicurist).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondWithError(c, http.StatusConflict, "Email or phone already registered")
			return
		}
		m.logger.Error("create manicurist failed", zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create manicurist")
		return
	}

	c.JSON(http.StatusCreated, manicurist)
}

func (m *ManicuristController) UpdateManicurist(c *gin.Context) {
	id, ok := paramUUID(c, "id", "manicurist")
	if !ok {
		return
	}

	var input UpdateManicuristInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	db := m.db.WithContext(c.Request.Context())
	var manicurist models.Manicurist
	if err := db.First(&manicurist, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Manicurist not found")
		return
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Name cannot be empty")
			return
		}
		manicurist.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		manicurist.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Phone != nil {
		phone := utils.NormalizePhone(*input.Phone)
		if phone != "" && !utils.ValidatePhone(phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Phone must be in international format")
			return
		}
		manicurist.Phone = phone
	}
	if input.Specialty != nil {
		manicurist.Specialty = *input.Specialty
	}
	if input.Bio != nil {
		manicurist.Bio = *input.Bio
	}
	if input.AvatarURL != nil {
		manicurist.AvatarURL = *input.AvatarURL
	}
	if input.IsActive != nil {
		manicurist.IsActive = *input.IsActive
	}

	if err := db.Omit("Services").Save(&manicurist).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update manicurist")
		return
	}
	c.JSON(http.StatusOK, manicurist)
}

// ToggleStatus flips the active flag. Inactive manicurists get no slots and
// cannot be booked.
func (m *ManicuristController) ToggleStatus(c *gin.Context) {
	id, ok := paramUUID(c, "id", "manicurist")
	if !ok {
		return
	}

	db := m.db.WithContext(c.Request.Context())
	var manicurist models.Manicurist
	if err := db.First(&manicurist, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Manicurist not found")
		return
	}

	manicurist.IsActive = !manicurist.IsActive
	if err := db.Model(&manicurist).Update("is_active", manicurist.IsActive).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update manicurist")
		return
	}
	c.JSON(http.StatusOK, manicurist)
}

func (m *ManicuristController) GetServices(c *gin.Context) {
	id, ok := paramUUID(c, "id", "manicurist")
	if !ok {
		return
	}

	var manicurist models.Manicurist
	err := m.db.WithContext(c.Request.Context()).
		Preload("Services", "is_active = ?", true).
		First(&manicurist, "id = ?", id).Error
	if err != nil {
		respondDBError(c, err, "Manicurist not found")
		return
	}
	c.JSON(http.StatusOK, manicurist.Services)
}

func (m *ManicuristController) AssignService(c *gin.Context) {
	id, ok := paramUUID(c, "id", "manicurist")
	if !ok {
		return
	}

	var input AssignServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	db := m.db.WithContext(c.Request.Context())
	var manicurist models.Manicurist
	if err := db.First(&manicurist, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Manicurist not found")
		return
	}
	var service models.Service
	if err := db.First(&service, "id = ?", input.ServiceID).Error; err != nil {
		respondDBError(c, err, "Service not found")
		return
	}

	if err := db.Model(&manicurist).Association("Services").Append(&service); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to assign service")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service assigned"})
}

func (m *ManicuristController) UnassignService(c *gin.Context) {
	id, ok := paramUUID(c, "id", "manicurist")
	if !ok {
		return
	}
	serviceID, ok := paramUUID(c, "serviceId", "service")
	if !ok {
		return
	}

	db := m.db.WithContext(c.Request.Context())
	var manicurist models.Manicurist
	if err := db.First(&manicurist, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Manicurist not found")
		return
	}

	if err := db.Model(&manicurist).Association("Services").Delete(&models.Service{ID: serviceID}); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to unassign service")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service unassigned"})
}

// GetSlots returns the start times for ?date=YYYY-MM-DD, each flagged with
// its availability. ?granularity overrides the slot length in minutes.
func (m *ManicuristController) GetSlots(c *gin.Context) {
	id, ok := paramUUID(c, "id", "manicurist")
	if !ok {
		return
	}

	date := c.Query("date")
	if date == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "date is required")
		return
	}
	granularity := 0
	if raw := c.Query("granularity"); raw != "" {
		g, err := strconv.Atoi(raw)
		if err != nil || g <= 0 || g > utils.MinutesPerDay {
			utils.RespondWithError(c, http.StatusBadRequest, "granularity must be a positive number of minutes")
			return
		}
		granularity = g
	}

	slots, err := m.engine.ComputeAvailableSlots(c.Request.Context(), id, date, granularity)
	if err != nil {
		respondWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "slots": slots})
}

func (m *ManicuristController) GetOpenDates(c *gin.Context) {
	id, ok := paramUUID(c, "id", "manicurist")
	if !ok {
		return
	}

	days := 0
	if raw := c.Query("days"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "days must be a positive number")
			return
		}
		days = d
	}

	dates, err := m.engine.ListOpenDates(c.Request.Context(), id, c.Query("from"), days)
	if err != nil {
		respondWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dates": dates})
}
