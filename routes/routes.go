package routes

import (
	"context"
	"net/http"
	"time"

	"nailsalon-backend/config"
	"nailsalon-backend/controllers"
	"nailsalon-backend/models"
	"nailsalon-backend/services/booking"
	"nailsalon-backend/services/storage"
	"nailsalon-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Config config.Config
	DB     *gorm.DB
	Engine *booking.Engine
	Tokens *utils.TokenIssuer
	Images storage.ImageStore
	Logger *zap.Logger
}

func SetupRouter(d Deps) *gin.Engine {
	if d.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Images == nil {
		d.Images = storage.Unconfigured{}
	}

	r := gin.New()
	r.Use(utils.Recovery(d.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.AllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(config.PerformanceLogger(d.Logger))
	if d.Config.MaxRequestsPerMin > 0 {
		r.Use(utils.RateLimitMiddleware(d.Config.MaxRequestsPerMin, d.Logger))
	}

	r.GET("/health", health(d.DB))

	authController := controllers.NewAuthController(d.DB, d.Tokens, d.Config.IsProduction(), d.Logger)
	manicuristController := controllers.NewManicuristController(d.DB, d.Engine, d.Logger)
	serviceController := controllers.NewServiceController(d.DB)
	nailStyleController := controllers.NewNailStyleController(d.DB)
	availabilityController := controllers.NewAvailabilityController(d.DB)
	appointmentController := controllers.NewAppointmentController(d.DB, d.Engine)
	reviewController := controllers.NewReviewController(d.DB)
	uploadController := controllers.NewUploadController(d.Images, d.Logger)
	dashboardController := controllers.NewDashboardController(d.DB, d.Engine)
	reportController := controllers.NewReportController(d.DB, d.Engine.Location(), d.Engine.Now)
	settingsController := controllers.NewSettingsController(d.DB)
	templateController := controllers.NewTemplateController(d.DB)

	requireAuth := d.Tokens.AuthMiddleware()
	adminOnly := utils.RequireRole(models.RoleAdmin)
	staff := utils.RequireRole(models.RoleManicurist, models.RoleAdmin)

	auth := r.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/logout", authController.Logout)

		auth.GET("/me", requireAuth, authController.Me)
	}

	// Public reads accept an optional token so admins can see inactive rows.
	public := r.Group("/api", d.Tokens.OptionalAuth())
	{
		public.GET("/manicurists", manicuristController.GetManicurists)
		public.GET("/manicurists/:id", manicuristController.GetManicurist)
		public.GET("/manicurists/:id/services", manicuristController.GetServices)
		public.GET("/manicurists/:id/slots", manicuristController.GetSlots)
		public.GET("/manicurists/:id/open-dates", manicuristController.GetOpenDates)

		public.GET("/services", serviceController.GetServices)
		public.GET("/services/categories", serviceController.GetCategories)
		public.GET("/services/:id", serviceController.GetService)

		public.GET("/nail-styles", nailStyleController.GetNailStyles)
		public.GET("/nail-styles/categories", nailStyleController.GetCategories)
		public.GET("/nail-styles/:id", nailStyleController.GetNailStyle)

		public.GET("/availability/manicurist/:id", availabilityController.GetManicuristAvailability)
		public.GET("/reviews", reviewController.GetReviews)
		public.GET("/settings", settingsController.GetSettings)
	}

	api := r.Group("/api", requireAuth)
	{
		// Manicurist routes
		api.GET("/manicurists/me/clients", utils.RequireRole(models.RoleManicurist), manicuristController.GetMyClients)
		api.GET("/manicurists/:id/calendar.ics", staff, manicuristController.GetCalendar)
		manicurists := api.Group("/manicurists", adminOnly)
		{
			manicurists.POST("", manicuristController.CreateManicurist)
			manicurists.PUT("/:id", manicuristController.UpdateManicurist)
			manicurists.PATCH("/:id/status", manicuristController.ToggleStatus)
			manicurists.POST("/:id/services", manicuristController.AssignService)
			manicurists.DELETE("/:id/services/:serviceId", manicuristController.UnassignService)
		}

		// Catalog routes
		services := api.Group("/services", adminOnly)
		{
			services.POST("", serviceController.CreateService)
			services.PUT("/:id", serviceController.UpdateService)
			services.PATCH("/:id/toggle", serviceController.ToggleService)
			services.DELETE("/:id", serviceController.DeleteService)
		}
		nailStyles := api.Group("/nail-styles", adminOnly)
		{
			nailStyles.POST("", nailStyleController.CreateNailStyle)
			nailStyles.PUT("/:id", nailStyleController.UpdateNailStyle)
			nailStyles.PATCH("/:id/toggle", nailStyleController.ToggleNailStyle)
			nailStyles.DELETE("/:id", nailStyleController.DeleteNailStyle)
		}

		// Availability routes
		availability := api.Group("/availability", staff)
		{
			availability.POST("", availabilityController.CreateAvailability)
			availability.PUT("/:id", availabilityController.UpdateAvailability)
			availability.DELETE("/:id", availabilityController.DeleteAvailability)
		}

		api.POST("/uploads/reference-images", uploadController.UploadReferenceImages)

		// Appointment routes
		appointments := api.Group("/appointments")
		{
			appointments.GET("", appointmentController.GetAppointments)
			appointments.POST("", appointmentController.CreateAppointment)
			appointments.GET("/:id", appointmentController.GetAppointment)
			appointments.PATCH("/:id/status", appointmentController.UpdateStatus)
			appointments.PATCH("/:id/rate", utils.RequireRole(models.RoleClient), appointmentController.Rate)
			appointments.PATCH("/:id/manicurist-note", utils.RequireRole(models.RoleManicurist), appointmentController.AddNote)
			appointments.POST("/:id/send-reminder", staff, appointmentController.SendReminder)
		}

		api.PATCH("/reviews/:id/approve", adminOnly, reviewController.ToggleApproval)

		api.GET("/dashboard", dashboardController.GetDashboardOverview)
		api.GET("/reports", adminOnly, reportController.GetReportAnalytics)

		// Settings routes
		api.PUT("/settings", adminOnly, settingsController.UpdateSettings)
		templates := api.Group("/notification-templates", adminOnly)
		{
			templates.GET("", templateController.GetTemplates)
			templates.GET("/:kind", templateController.GetTemplate)
			templates.PUT("/:kind", templateController.UpdateTemplate)
		}
		api.GET("/notification-logs", adminOnly, templateController.GetNotificationLogs)
	}

	return r
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
