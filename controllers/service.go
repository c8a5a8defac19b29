package controllers

import (
	"net/http"
	"strings"

	"nailsalon-backend/models"
	"nailsalon-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateServiceInput defines the expected JSON structure for creating a service
type CreateServiceInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"min=0"`
	Duration    int     `json:"duration" binding:"required,min=1"` // in minutes
	Category    string  `json:"category"`
}

// UpdateServiceInput defines the expected JSON structure for updating a service
type UpdateServiceInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,min=0"`
	Duration    *int     `json:"duration" binding:"omitempty,min=1"`
	Category    *string  `json:"category"`
	IsActive    *bool    `json:"isActive"`
}

type ServiceController struct {
	db *gorm.DB
}

func NewServiceController(db *gorm.DB) *ServiceController {
	return &ServiceController{db: db}
}

// CreateService adds a service to the catalog
func (s *ServiceController) CreateService(c *gin.Context) {
	var input CreateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	service := models.Service{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Duration:    input.Duration,
		Category:    defaultCategory(input.Category),
		IsActive:    true,
	}
	if err := s.db.WithContext(c.Request.Context()).Create(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create service")
		return
	}

	c.JSON(http.StatusCreated, service)
}

// GetServices lists the catalog. Only admins see inactive services, and only
// when they ask for them with ?all=true.
func (s *ServiceController) GetServices(c *gin.Context) {
	q := s.db.WithContext(c.Request.Context()).Order("category, name")
	if !(currentRole(c) == models.RoleAdmin && c.Query("all") == "true") {
		q = q.Where("is_active = ?", true)
	}
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var services []models.Service
	if err := q.Find(&services).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}

	c.JSON(http.StatusOK, services)
}

// GetService retrieves a specific service by ID
func (s *ServiceController) GetService(c *gin.Context) {
	id, ok := paramUUID(c, "id", "service")
	if !ok {
		return
	}

	var service models.Service
	if err := s.db.WithContext(c.Request.Context()).First(&service, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Service not found")
		return
	}

	c.JSON(http.StatusOK, service)
}

// UpdateService updates an existing service
func (s *ServiceController) UpdateService(c *gin.Context) {
	id, ok := paramUUID(c, "id", "service")
	if !ok {
		return
	}

	var input UpdateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	db := s.db.WithContext(c.Request.Context())
	var service models.Service
	if err := db.First(&service, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Service not found")
		return
	}

	// Update fields if provided
	if input.Name != nil {
		service.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		service.Description = *input.Description
	}
	if input.Price != nil {
		service.Price = *input.Price
	}
	if input.Duration != nil {
		service.Duration = *input.Duration
	}
	if input.Category != nil {
		service.Category = defaultCategory(*input.Category)
	}
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}

	if err := db.Save(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update service")
		return
	}

	c.JSON(http.StatusOK, service)
}

// ToggleService flips the active flag. Inactive services cannot be booked
// but existing appointments keep them.
func (s *ServiceController) ToggleService(c *gin.Context) {
	id, ok := paramUUID(c, "id", "service")
	if !ok {
		return
	}

	db := s.db.WithContext(c.Request.Context())
	var service models.Service
	if err := db.First(&service, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Service not found")
		return
	}

	service.IsActive = !service.IsActive
	if err := db.Model(&service).Update("is_active", service.IsActive).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update service")
		return
	}

	c.JSON(http.StatusOK, service)
}

// DeleteService soft deletes a service
func (s *ServiceController) DeleteService(c *gin.Context) {
	id, ok := paramUUID(c, "id", "service")
	if !ok {
		return
	}

	result := s.db.WithContext(c.Request.Context()).Where("id = ?", id).Delete(&models.Service{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete service")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Service deleted successfully"})
}

func (s *ServiceController) GetCategories(c *gin.Context) {
	var categories []string
	if err := s.db.WithContext(c.Request.Context()).Model(&models.Service{}).
		Where("is_active = ?", true).
		Distinct().Order("category").Pluck("category", &categories).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}

	c.JSON(http.StatusOK, categories)
}

func defaultCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return "General"
	}
	return category
}
