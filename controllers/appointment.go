package controllers

import (
	"net/http"
	"strings"

	"nailsalon-backend/models"
	"nailsalon-backend/services/booking"
	"nailsalon-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	nailStylePredefined = "predefined"
	nailStyleCustom     = "custom"
)

// NailStyleChoice selects a catalog style ("predefined" with id) or a set
// of uploaded reference images ("custom" with fileIds).
type NailStyleChoice struct {
	Type    string     `json:"type" binding:"required,oneof=predefined custom"`
	ID      *uuid.UUID `json:"id"`
	FileIDs []string   `json:"fileIds"`
}

type CreateAppointmentInput struct {
	ManicuristID uuid.UUID       `json:"manicuristId" binding:"required"`
	ServiceID    uuid.UUID       `json:"serviceId" binding:"required"`
	Date         string          `json:"date" binding:"required"`
	StartTime    string          `json:"startTime" binding:"required"`
	NailStyle    NailStyleChoice `json:"nailStyle" binding:"required"`
	ClientName   string          `json:"clientName"`
	ClientEmail  string          `json:"clientEmail"`
	ClientPhone  string          `json:"clientPhone"`
	Notes        string          `json:"notes" binding:"max=1000"`
}

type UpdateStatusInput struct {
	Status string `json:"status" binding:"required"`
}

type RateInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=1000"`
}

type NoteInput struct {
	Note string `json:"note" binding:"max=2000"`
}

type AppointmentController struct {
	db     *gorm.DB
	engine *booking.Engine
}

func NewAppointmentController(db *gorm.DB, engine *booking.Engine) *AppointmentController {
	return &AppointmentController{db: db, engine: engine}
}

// scope narrows a filter to what the caller may see.
func (a *AppointmentController) scope(c *gin.Context, f *booking.AppointmentFilter) bool {
	switch currentRole(c) {
	case models.RoleClient:
		userID, ok := currentUserID(c)
		if !ok {
			return false
		}
		f.ClientID = &userID
	case models.RoleManicurist:
		own, ok := ownManicurist(c, a.db)
		if !ok {
			return false
		}
		f.ManicuristID = &own.ID
	case models.RoleAdmin:
	default:
		utils.RespondWithError(c, http.StatusForbidden, "Insufficient permissions")
		return false
	}
	return true
}

// visible loads an appointment and reports it as missing when the caller
// has no access to it.
func (a *AppointmentController) visible(c *gin.Context) (*models.Appointment, bool) {
	id, ok := paramUUID(c, "id", "appointment")
	if !ok {
		return nil, false
	}

	var f booking.AppointmentFilter
	if !a.scope(c, &f) {
		return nil, false
	}

	appt, err := a.engine.GetAppointment(c.Request.Context(), id)
	if err != nil {
		respondWithEngineError(c, err)
		return nil, false
	}
	if f.ClientID != nil && (appt.ClientID == nil || *appt.ClientID != *f.ClientID) {
		utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		return nil, false
	}
	if f.ManicuristID != nil && appt.ManicuristID != *f.ManicuristID {
		utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		return nil, false
	}
	return appt, true
}

// GetAppointments lists appointments visible to the caller. Filters:
// ?status=pending,confirmed &from= &to= &manicuristId= (admin) &page= &pageSize=
func (a *AppointmentController) GetAppointments(c *gin.Context) {
	f := booking.AppointmentFilter{
		From: c.Query("from"),
		To:   c.Query("to"),
	}
	if raw := c.Query("status"); raw != "" {
		f.Statuses = strings.Split(raw, ",")
	}
	f.Page = atoiOrZero(c.Query("page"))
	f.PageSize = atoiOrZero(c.Query("pageSize"))

	if raw := c.Query("manicuristId"); raw != "" && currentRole(c) == models.RoleAdmin {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid manicurist ID format")
			return
		}
		f.ManicuristID = &id
	}
	if !a.scope(c, &f) {
		return
	}

	page, err := a.engine.ListAppointments(c.Request.Context(), f)
	if err != nil {
		respondWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (a *AppointmentController) GetAppointment(c *gin.Context) {
	appt, ok := a.visible(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, appt)
}

// CreateAppointment books a slot. Contact details default to the caller's
// account when omitted.
func (a *AppointmentController) CreateAppointment(c *gin.Context) {
	var input CreateAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var user models.User
	if err := a.db.WithContext(c.Request.Context()).First(&user, "id = ?", userID).Error; err != nil {
		respondDBError(c, err, "User not found")
		return
	}

	req := booking.BookingRequest{
		ManicuristID: input.ManicuristID,
		ServiceID:    input.ServiceID,
		Date:         input.Date,
		StartTime:    input.StartTime,
		Contact: booking.Contact{
			Name:  firstNonEmpty(input.ClientName, user.Name),
			Email: strings.ToLower(firstNonEmpty(input.ClientEmail, user.Email)),
			Phone: utils.NormalizePhone(firstNonEmpty(input.ClientPhone, user.Phone)),
		},
		Notes: strings.TrimSpace(input.Notes),
	}
	if user.Role == models.RoleClient {
		req.ClientID = &user.ID
	}
	switch input.NailStyle.Type {
	case nailStylePredefined:
		if input.NailStyle.ID == nil || len(input.NailStyle.FileIDs) > 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "A predefined nail style needs an id and no files")
			return
		}
		req.NailStyle.NailStyleID = input.NailStyle.ID
	case nailStyleCustom:
		if input.NailStyle.ID != nil || len(input.NailStyle.FileIDs) == 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "A custom nail style needs at least one reference image")
			return
		}
		req.NailStyle.ReferenceImageIDs = input.NailStyle.FileIDs
	}

	appt, err := a.engine.CreateAppointment(c.Request.Context(), req)
	if err != nil {
		respondWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

// UpdateStatus moves an appointment along its lifecycle. Clients may only
// cancel their own appointments.
func (a *AppointmentController) UpdateStatus(c *gin.Context) {
	var input UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	appt, ok := a.visible(c)
	if !ok {
		return
	}
	if currentRole(c) == models.RoleClient && input.Status != models.StatusCancelled {
		utils.RespondWithError(c, http.StatusForbidden, "Clients can only cancel appointments")
		return
	}

	updated, err := a.engine.ChangeStatus(c.Request.Context(), appt.ID, input.Status)
	if err != nil {
		respondWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (a *AppointmentController) Rate(c *gin.Context) {
	id, ok := paramUUID(c, "id", "appointment")
	if !ok {
		return
	}
	var input RateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	review, err := a.engine.RateAppointment(c.Request.Context(), id, userID, input.Rating, strings.TrimSpace(input.Comment))
	if err != nil {
		respondWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (a *AppointmentController) AddNote(c *gin.Context) {
	id, ok := paramUUID(c, "id", "appointment")
	if !ok {
		return
	}
	var input NoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	own, ok := ownManicurist(c, a.db)
	if !ok {
		return
	}

	appt, err := a.engine.AddManicuristNote(c.Request.Context(), id, own.ID, strings.TrimSpace(input.Note))
	if err != nil {
		respondWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

func (a *AppointmentController) SendReminder(c *gin.Context) {
	appt, ok := a.visible(c)
	if !ok {
		return
	}

	if _, err := a.engine.SendReminder(c.Request.Context(), appt.ID); err != nil {
		respondWithEngineError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Reminder queued"})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
