package controllers

import (
	"net/http"

	"nailsalon-backend/models"
	"nailsalon-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UpdateSettingsInput struct {
	SiteTitle           *string `json:"siteTitle"`
	SiteDescription     *string `json:"siteDescription"`
	ContactEmail        *string `json:"contactEmail" binding:"omitempty,email"`
	ContactPhone        *string `json:"contactPhone"`
	Address             *string `json:"address"`
	EnableNotifications *bool   `json:"enableNotifications"`
	EnableReminders     *bool   `json:"enableReminders"`
}

type SettingsController struct {
	db *gorm.DB
}

func NewSettingsController(db *gorm.DB) *SettingsController {
	return &SettingsController{db: db}
}

// GetSettings returns the salon-wide settings row
func (s *SettingsController) GetSettings(c *gin.Context) {
	var settings models.SalonSettings
	if err := s.db.WithContext(c.Request.Context()).First(&settings, models.SalonSettingsID).Error; err != nil {
		respondDBError(c, err, "Settings not found")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings applies the provided fields to the settings row
func (s *SettingsController) UpdateSettings(c *gin.Context) {
	var input UpdateSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	db := s.db.WithContext(c.Request.Context())
	var settings models.SalonSettings
	if err := db.First(&settings, models.SalonSettingsID).Error; err != nil {
		respondDBError(c, err, "Settings not found")
		return
	}

	if input.SiteTitle != nil {
		settings.SiteTitle = *input.SiteTitle
	}
	if input.SiteDescription != nil {
		settings.SiteDescription = *input.SiteDescription
	}
	if input.ContactEmail != nil {
		settings.ContactEmail = *input.ContactEmail
	}
	if input.ContactPhone != nil {
		phone := utils.NormalizePhone(*input.ContactPhone)
		if phone != "" && !utils.ValidatePhone(phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Phone must be in international format")
			return
		}
		settings.ContactPhone = phone
	}
	if input.Address != nil {
		settings.Address = *input.Address
	}
	if input.EnableNotifications != nil {
		settings.EnableNotifications = *input.EnableNotifications
	}
	if input.EnableReminders != nil {
		settings.EnableReminders = *input.EnableReminders
	}

	if err := db.Save(&settings).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}
