package controllers

import (
	"net/http"
	"strings"

	"nailsalon-backend/models"
	"nailsalon-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NailStyleInput struct {
	Name         *string    `json:"name"`
	Description  *string    `json:"description"`
	Category     *string    `json:"category"`
	ImageURL     *string    `json:"imageUrl"`
	ServiceID    *uuid.UUID `json:"serviceId"`
	ManicuristID *uuid.UUID `json:"manicuristId"`
	IsActive     *bool      `json:"isActive"`
}

type NailStyleController struct {
	db *gorm.DB
}

func NewNailStyleController(db *gorm.DB) *NailStyleController {
	return &NailStyleController{db: db}
}

func (n *NailStyleController) GetNailStyles(c *gin.Context) {
	q := n.db.WithContext(c.Request.Context()).Order("category, name")
	if !(currentRole(c) == models.RoleAdmin && c.Query("all") == "true") {
		q = q.Where("is_active = ?", true)
	}
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if raw := c.Query("manicuristId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid manicurist ID format")
			return
		}
		// Styles without a manicurist are offered by everyone.
		q = q.Where("manicurist_id = ? OR manicurist_id IS NULL", id)
	}

	var styles []models.NailStyle
	if err := q.Find(&styles).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve nail styles")
		return
	}
	c.JSON(http.StatusOK, styles)
}

func (n *NailStyleController) GetNailStyle(c *gin.Context) {
	id, ok := paramUUID(c, "id", "nail style")
	if !ok {
		return
	}

	var style models.NailStyle
	if err := n.db.WithContext(c.Request.Context()).First(&style, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Nail style not found")
		return
	}
	c.JSON(http.StatusOK, style)
}

func (n *NailStyleController) CreateNailStyle(c *gin.Context) {
	var input NailStyleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Name is required")
		return
	}

	style := models.NailStyle{IsActive: true}
	applyNailStyleInput(&style, input)

	if err := n.db.WithContext(c.Request.Context()).Create(&style).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create nail style")
		return
	}
	c.JSON(http.StatusCreated, style)
}

func (n *NailStyleController) UpdateNailStyle(c *gin.Context) {
	id, ok := paramUUID(c, "id", "nail style")
	if !ok {
		return
	}

	var input NailStyleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Name cannot be empty")
		return
	}

	db := n.db.WithContext(c.Request.Context())
	var style models.NailStyle
	if err := db.First(&style, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Nail style not found")
		return
	}

	applyNailStyleInput(&style, input)
	if err := db.Save(&style).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update nail style")
		return
	}
	c.JSON(http.StatusOK, style)
}

func (n *NailStyleController) ToggleNailStyle(c *gin.Context) {
	id, ok := paramUUID(c, "id", "nail style")
	if !ok {
		return
	}

	db := n.db.WithContext(c.Request.Context())
	var style models.NailStyle
	if err := db.First(&style, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Nail style not found")
		return
	}

	style.IsActive = !style.IsActive
	if err := db.Model(&style).Update("is_active", style.IsActive).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update nail style")
		return
	}
	c.JSON(http.StatusOK, style)
}

func (n *NailStyleController) DeleteNailStyle(c *gin.Context) {
	id, ok := paramUUID(c, "id", "nail style")
	if !ok {
		return
	}

	result := n.db.WithContext(c.Request.Context()).Where("id = ?", id).Delete(&models.NailStyle{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete nail style")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Nail style not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Nail style deleted successfully"})
}

func (n *NailStyleController) GetCategories(c *gin.Context) {
	var categories []string
	if err := n.db.WithContext(c.Request.Context()).Model(&models.NailStyle{}).
		Where("is_active = ?", true).
		Distinct().Order("category").Pluck("category", &categories).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

func applyNailStyleInput(style *models.NailStyle, input NailStyleInput) {
	if input.Name != nil {
		style.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		style.Description = *input.Description
	}
	if input.Category != nil || style.Category == "" {
		var category string
		if input.Category != nil {
			category = *input.Category
		}
		style.Category = defaultCategory(category)
	}
	if input.ImageURL != nil {
		style.ImageURL = *input.ImageURL
	}
	if input.ServiceID != nil {
		style.ServiceID = nullableUUID(*input.ServiceID)
	}
	if input.ManicuristID != nil {
		style.ManicuristID = nullableUUID(*input.ManicuristID)
	}
	if input.IsActive != nil {
		style.IsActive = *input.IsActive
	}
}

func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
