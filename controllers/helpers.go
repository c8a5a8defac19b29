package controllers

import (
	"errors"
	"net/http"
	"strings"

	"nailsalon-backend/models"
	"nailsalon-backend/services/booking"
	"nailsalon-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errNoManicuristProfile = errors.New("no manicurist profile for user")

// currentUserID reads the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString("userId"))
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}
	return id, true
}

func currentRole(c *gin.Context) string {
	return c.GetString("role")
}

func paramUUID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+label+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// respondWithEngineError maps booking errors onto HTTP statuses.
func respondWithEngineError(c *gin.Context, err error) {
	var e *booking.Error
	if !errors.As(err, &e) {
		zap.L().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		utils.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	status := http.StatusInternalServerError
	switch e.Kind {
	case booking.KindNotFound:
		status = http.StatusNotFound
	case booking.KindValidation:
		status = http.StatusBadRequest
	case booking.KindSlotConflict, booking.KindInvalidTransition:
		status = http.StatusConflict
	case booking.KindUpstream:
		status = http.StatusBadGateway
	}
	msg := e.Message
	if msg == "" {
		msg = strings.ReplaceAll(string(e.Kind), "_", " ")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": string(e.Kind)})
}

func manicuristForUser(db *gorm.DB, userID uuid.UUID) (*models.Manicurist, error) {
	var m models.Manicurist
	if err := db.Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNoManicuristProfile
		}
		return nil, err
	}
	return &m, nil
}

// ownManicurist resolves the manicurist profile of the calling user and
// responds with 403 when there is none.
func ownManicurist(c *gin.Context, db *gorm.DB) (*models.Manicurist, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}
	m, err := manicuristForUser(db.WithContext(c.Request.Context()), userID)
	if err != nil {
		if errors.Is(err, errNoManicuristProfile) {
			utils.RespondWithError(c, http.StatusForbidden, "No manicurist profile for this account")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return m, true
}

func respondDBError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusNotFound, notFound)
		return
	}
	zap.L().Error("database error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
}
