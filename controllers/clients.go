package controllers

import (
	"net/http"

	"nailsalon-backend/models"
	"nailsalon-backend/utils"

	"github.com/gin-gonic/gin"
)

// ClientSummary aggregates one client's history with a manicurist. Clients
// are keyed by phone since guests book without an account.
type ClientSummary struct {
	ClientName  string `json:"clientName"`
	ClientPhone string `json:"clientPhone"`
	ClientEmail string `json:"clientEmail"`
	Visits      int64  `json:"visits"`
	Completed   int64  `json:"completed"`
	LastVisit   string `json:"lastVisit"`
	// Negative when the latest booking is still upcoming.
	DaysSinceLastVisit int `json:"daysSinceLastVisit" gorm:"-"`
}

// GetMyClients lists the clients who booked with the calling manicurist.
func (m *ManicuristController) GetMyClients(c *gin.Context) {
	own, ok := ownManicurist(c, m.db)
	if !ok {
		return
	}

	q := m.db.WithContext(c.Request.Context()).Model(&models.Appointment{}).
		Select(`client_phone,
			MAX(client_name) AS client_name,
			MAX(client_email) AS client_email,
			COUNT(*) AS visits,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS completed,
			MAX(date) AS last_visit`, models.StatusCompleted).
		Where("manicurist_id = ? AND status <> ?", own.ID, models.StatusCancelled).
		Group("client_phone").
		Order("last_visit DESC")
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("client_name LIKE ? OR client_phone LIKE ? OR client_email LIKE ?", like, like, like)
	}

	var clients []ClientSummary
	if err := q.Scan(&clients).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve clients")
		return
	}
	if clients == nil {
		clients = []ClientSummary{}
	}

	now := m.engine.Now().In(m.engine.Location())
	for i := range clients {
		if last, err := utils.ParseDate(clients[i].LastVisit, m.engine.Location()); err == nil {
			clients[i].DaysSinceLastVisit = utils.DaysBetween(last, now)
		}
	}
	c.JSON(http.StatusOK, clients)
}
