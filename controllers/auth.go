package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"nailsalon-backend/models"
	"nailsalon-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginInput struct {
	Identifier string `json:"identifier" binding:"required"` // Can be email or phone
	Password   string `json:"password" binding:"required"`
}

type AuthController struct {
	db           *gorm.DB
	tokens       *utils.TokenIssuer
	secureCookie bool
	logger       *zap.Logger
}

func NewAuthController(db *gorm.DB, tokens *utils.TokenIssuer, secureCookie bool, logger *zap.Logger) *AuthController {
	return &AuthController{db: db, tokens: tokens, secureCookie: secureCookie, logger: logger}
}

func userResponse(u models.User) gin.H {
	return gin.H{
		"id":    u.ID,
		"email": u.Email,
		"name":  u.Name,
		"phone": u.Phone,
		"role":  u.Role,
	}
}

func (a *AuthController) issue(c *gin.Context, u models.User) (string, bool) {
	token, err := a.tokens.GenerateToken(u.ID.String(), u.Role)
	if err != nil {
		a.logger.Error("token generation failed", zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return "", false
	}
	c.SetCookie("token", token, int(a.tokens.Expiry().Seconds()), "/", "", a.secureCookie, true)
	return token, true
}

// Register creates a client account. Manicurist and admin accounts are
// provisioned by an admin.
func (a *AuthController) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	phone := utils.NormalizePhone(input.Phone)
	if phone != "" && !utils.ValidatePhone(phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Phone must be in international format")
		return
	}

	db := a.db.WithContext(c.Request.Context())

	// Check if email or phone already exists
	var existing models.User
	q := db.Where("email = ?", email)
	if phone != "" {
		q = q.Or("phone = ?", phone)
	}
	err := q.First(&existing).Error
	if err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Email or phone already registered")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	user := models.User{
		Email:    email,
		Phone:    phone,
		Name:     strings.TrimSpace(input.Name),
		Password: input.Password, // Will be hashed in BeforeCreate hook
		Role:     models.RoleClient,
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondWithError(c, http.StatusConflict, "Email or phone already registered")
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, ok := a.issue(c, user)
	if !ok {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   token,
		"user":    userResponse(user),
	})
}

func (a *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	identifier := strings.TrimSpace(input.Identifier)
	db := a.db.WithContext(c.Request.Context())

	var user models.User
	err := db.Where("email = ? OR phone = ?", strings.ToLower(identifier), utils.NormalizePhone(identifier)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !user.IsActive {
		utils.RespondWithError(c, http.StatusForbidden, "Account is disabled")
		return
	}

	token, ok := a.issue(c, user)
	if !ok {
		return
	}

	now := time.Now()
	if err := db.Model(&user).Update("last_login", &now).Error; err != nil {
		a.logger.Warn("failed to record last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userResponse(user),
	})
}

func (a *AuthController) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var user models.User
	if err := a.db.WithContext(c.Request.Context()).First(&user, "id = ?", userID).Error; err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}

	resp := userResponse(user)
	if user.Role == models.RoleManicurist {
		if m, err := manicuristForUser(a.db.WithContext(c.Request.Context()), user.ID); err == nil {
			resp["manicuristId"] = m.ID
		}
	}
	c.JSON(http.StatusOK, gin.H{"user": resp})
}

func (a *AuthController) Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", a.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
