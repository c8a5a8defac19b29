package controllers

import (
	"net/http"
	"strconv"

	"nailsalon-backend/models"
	"nailsalon-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewController struct {
	db *gorm.DB
}

func NewReviewController(db *gorm.DB) *ReviewController {
	return &ReviewController{db: db}
}

// GetReviews lists reviews newest first. Only admins see unapproved ones.
func (r *ReviewController) GetReviews(c *gin.Context) {
	page, pageSize := utils.NormalizePage(atoiOrZero(c.Query("page")), atoiOrZero(c.Query("pageSize")))

	q := r.db.WithContext(c.Request.Context()).Model(&models.Review{})
	if currentRole(c) != models.RoleAdmin {
		q = q.Where("is_approved = ?", true)
	} else if raw := c.Query("approved"); raw != "" {
		q = q.Where("is_approved = ?", raw == "true")
	}
	if raw := c.Query("manicuristId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid manicurist ID format")
			return
		}
		q = q.Where("manicurist_id = ?", id)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve reviews")
		return
	}
	var reviews []models.Review
	if err := q.Order("created_at DESC").
		Offset(utils.Offset(page, pageSize)).Limit(pageSize).
		Find(&reviews).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve reviews")
		return
	}

	c.JSON(http.StatusOK, utils.NewPage(reviews, page, pageSize, total))
}

// ToggleApproval publishes or hides a review.
func (r *ReviewController) ToggleApproval(c *gin.Context) {
	id, ok := paramUUID(c, "id", "review")
	if !ok {
		return
	}

	db := r.db.WithContext(c.Request.Context())
	var review models.Review
	if err := db.First(&review, "id = ?", id).Error; err != nil {
		respondDBError(c, err, "Review not found")
		return
	}

	review.IsApproved = !review.IsApproved
	if err := db.Model(&review).Update("is_approved", review.IsApproved).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update review")
		return
	}
	c.JSON(http.StatusOK, review)
}

func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
