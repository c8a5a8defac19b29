package controllers

import (
	"math"
	"net/http"
	"time"

	"nailsalon-backend/models"
	"nailsalon-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ReportController handles salon analytics. Revenue is the price of the
// service on each completed appointment.
type ReportController struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

func NewReportController(db *gorm.DB, loc *time.Location, now func() time.Time) *ReportController {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &ReportController{db: db, loc: loc, now: now}
}

// AnalyticsSummary represents the Analytics data
type AnalyticsSummary struct {
	CurrentMonthRevenue   float64             `json:"currentMonthRevenue"`
	MonthGrowth           float64             `json:"monthGrowth"`
	CurrentQuarterRevenue float64             `json:"currentQuarterRevenue"`
	QuarterGrowth         float64             `json:"quarterGrowth"`
	CurrentYearRevenue    float64             `json:"currentYearRevenue"`
	YearGrowth            float64             `json:"yearGrowth"`
	TopServices           []ServiceSummary    `json:"topServices"`
	TopManicurists        []ManicuristSummary `json:"topManicurists"`
	QuickStats            QuickStatistics     `json:"quickStats"`
}

type ServiceSummary struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type ManicuristSummary struct {
	Name          string  `json:"name"`
	Appointments  int     `json:"appointments"`
	Revenue       float64 `json:"revenue"`
	AverageRating float64 `json:"averageRating"`
}

type QuickStatistics struct {
	TotalClients      int64   `json:"totalClients"`
	TotalAppointments int64   `json:"totalAppointments"`
	CancellationRate  float64 `json:"cancellationRate"`
	AvgOrderValue     float64 `json:"avgOrderValue"`
}

// dateRange is an inclusive range of "2006-01-02" dates.
type dateRange struct {
	from, to string
}

func newDateRange(from, to time.Time) dateRange {
	return dateRange{from: utils.FormatDate(from), to: utils.FormatDate(to)}
}

// GetReportAnalytics returns revenue growth and rankings for the current
// month, quarter and year.
func (rc *ReportController) GetReportAnalytics(c *gin.Context) {
	db := rc.db.WithContext(c.Request.Context())

	now := rc.now().In(rc.loc)
	year, month, _ := now.Date()

	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, rc.loc)
	monthRange := newDateRange(firstOfMonth, firstOfMonth.AddDate(0, 1, -1))
	lastMonth := newDateRange(firstOfMonth.AddDate(0, -1, 0), firstOfMonth.AddDate(0, 0, -1))

	quarterStart := rc.getQuarterStart(now)
	quarterRange := newDateRange(quarterStart, quarterStart.AddDate(0, 3, -1))
	lastQuarter := newDateRange(quarterStart.AddDate(0, -3, 0), quarterStart.AddDate(0, 0, -1))

	firstOfYear := time.Date(year, 1, 1, 0, 0, 0, 0, rc.loc)
	yearRange := newDateRange(firstOfYear, firstOfYear.AddDate(1, 0, -1))
	lastYear := newDateRange(firstOfYear.AddDate(-1, 0, 0), firstOfYear.AddDate(0, 0, -1))

	revenues := make(map[dateRange]float64, 6)
	for _, r := range []dateRange{monthRange, lastMonth, quarterRange, lastQuarter, yearRange, lastYear} {
		revenue, err := rc.getRevenue(db, r)
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get revenue")
			return
		}
		revenues[r] = revenue
	}

	topServices, err := rc.getTopServices(db, monthRange, 4)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get top services")
		return
	}

	topManicurists, err := rc.getTopManicurists(db, monthRange, 4)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get top manicurists")
		return
	}

	quickStats, err := rc.getQuickStatistics(db)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get quick statistics")
		return
	}

	c.JSON(http.StatusOK, AnalyticsSummary{
		CurrentMonthRevenue:   revenues[monthRange],
		MonthGrowth:           calculateGrowthPercentage(revenues[monthRange], revenues[lastMonth]),
		CurrentQuarterRevenue: revenues[quarterRange],
		QuarterGrowth:         calculateGrowthPercentage(revenues[quarterRange], revenues[lastQuarter]),
		CurrentYearRevenue:    revenues[yearRange],
		YearGrowth:            calculateGrowthPercentage(revenues[yearRange], revenues[lastYear]),
		TopServices:           topServices,
		TopManicurists:        topManicurists,
		QuickStats:            quickStats,
	})
}

func completedIn(db *gorm.DB, r dateRange) *gorm.DB {
	return db.Table("appointments").
		Joins("JOIN services ON services.id = appointments.service_id").
		Where("appointments.status = ? AND appointments.date BETWEEN ? AND ?", models.StatusCompleted, r.from, r.to)
}

func (rc *ReportController) getRevenue(db *gorm.DB, r dateRange) (float64, error) {
	var revenue float64
	err := completedIn(db, r).Select("COALESCE(SUM(services.price), 0)").Scan(&revenue).Error
	return revenue, err
}

func (rc *ReportController) getTopServices(db *gorm.DB, r dateRange, limit int) ([]ServiceSummary, error) {
	services := []ServiceSummary{}
	err := completedIn(db, r).
		Select("services.name AS name, COUNT(*) AS count, COALESCE(SUM(services.price), 0) AS revenue").
		Group("services.id, services.name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&services).Error
	return services, err
}

func (rc *ReportController) getTopManicurists(db *gorm.DB, r dateRange, limit int) ([]ManicuristSummary, error) {
	manicurists := []ManicuristSummary{}
	err := completedIn(db, r).
		Joins("JOIN manicurists ON manicurists.id = appointments.manicurist_id").
		Select(`manicurists.name AS name,
			COUNT(*) AS appointments,
			COALESCE(SUM(services.price), 0) AS revenue,
			COALESCE(AVG(appointments.rating), 0) AS average_rating`).
		Group("manicurists.id, manicurists.name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&manicurists).Error
	return manicurists, err
}

func (rc *ReportController) getQuickStatistics(db *gorm.DB) (QuickStatistics, error) {
	var stats QuickStatistics

	if err := db.Model(&models.Appointment{}).Count(&stats.TotalAppointments).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Appointment{}).
		Distinct("client_phone").Count(&stats.TotalClients).Error; err != nil {
		return stats, err
	}

	var cancelled int64
	if err := db.Model(&models.Appointment{}).
		Where("status = ?", models.StatusCancelled).Count(&cancelled).Error; err != nil {
		return stats, err
	}
	if stats.TotalAppointments > 0 {
		stats.CancellationRate = round2(float64(cancelled) / float64(stats.TotalAppointments) * 100)
	}

	if err := db.Table("appointments").
		Joins("JOIN services ON services.id = appointments.service_id").
		Where("appointments.status = ?", models.StatusCompleted).
		Select("COALESCE(AVG(services.price), 0)").
		Scan(&stats.AvgOrderValue).Error; err != nil {
		return stats, err
	}
	stats.AvgOrderValue = round2(stats.AvgOrderValue)
	return stats, nil
}

func (rc *ReportController) getQuarterStart(t time.Time) time.Time {
	quarter := (int(t.Month()) - 1) / 3
	return time.Date(t.Year(), time.Month(quarter*3+1), 1, 0, 0, 0, 0, t.Location())
}

func calculateGrowthPercentage(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round2((current - previous) / previous * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
