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

// UpdateTemplateInput defines the expected JSON structure
type UpdateTemplateInput struct {
	Message  *string `json:"message"`
	IsActive *bool   `json:"isActive"`
}

// TemplateController manages the notification message templates and
// exposes the delivery log.
type TemplateController struct {
	db *gorm.DB
}

func NewTemplateController(db *gorm.DB) *TemplateController {
	return &TemplateController{db: db}
}

// GetTemplates retrieves every notification template
func (t *TemplateController) GetTemplates(c *gin.Context) {
	var templates []models.NotificationTemplate
	if err := t.db.WithContext(c.Request.Context()).Order("kind").Find(&templates).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve templates")
		return
	}
	c.JSON(http.StatusOK, templates)
}

// GetTemplate retrieves the template for one kind
func (t *TemplateController) GetTemplate(c *gin.Context) {
	var template models.NotificationTemplate
	if err := t.db.WithContext(c.Request.Context()).
		Where("kind = ?", c.Param("kind")).First(&template).Error; err != nil {
		respondDBError(c, err, "Template not found")
		return
	}
	c.JSON(http.StatusOK, template)
}

// UpdateTemplate changes the message or active flag of a template
func (t *TemplateController) UpdateTemplate(c *gin.Context) {
	var input UpdateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	db := t.db.WithContext(c.Request.Context())
	var template models.NotificationTemplate
	if err := db.Where("kind = ?", c.Param("kind")).First(&template).Error; err != nil {
		respondDBError(c, err, "Template not found")
		return
	}

	if input.Message != nil {
		msg := strings.TrimSpace(*input.Message)
		if msg == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Message cannot be empty")
			return
		}
		template.Message = msg
	}
	if input.IsActive != nil {
		template.IsActive = *input.IsActive
	}

	if err := db.Save(&template).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update template")
		return
	}
	c.JSON(http.StatusOK, template)
}

// GetNotificationLogs lists delivery attempts, newest first
func (t *TemplateController) GetNotificationLogs(c *gin.Context) {
	page, pageSize := utils.NormalizePage(atoiOrZero(c.Query("page")), atoiOrZero(c.Query("pageSize")))

	q := t.db.WithContext(c.Request.Context()).Model(&models.NotificationLog{})
	if kind := c.Query("kind"); kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if raw := c.Query("appointmentId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
			return
		}
		q = q.Where("appointment_id = ?", id)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve notification logs")
		return
	}
	var logs []models.NotificationLog
	if err := q.Order("created_at DESC").
		Offset(utils.Offset(page, pageSize)).Limit(pageSize).
		Find(&logs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve notification logs")
		return
	}
	c.JSON(http.StatusOK, utils.NewPage(logs, page, pageSize, total))
}
