package routes

import (
	"time"

	"fixmo/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAvailabilityRoutes registers the template and resolver endpoints.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/providers")
	{
		api.GET("/:providerID/availability", hb.ResolveAvailabilityHandler)
		api.PUT("/:providerID/availability", hb.SetWeeklyTemplateHandler)
		api.GET("/:providerID/availability/template", hb.ListTemplateHandler)
	}
	r.PATCH("/api/availability/:slotID/active", hb.SetTemplateActiveHandler)
}

// RegisterBookingRoutes sets up the endpoints for the booking engine.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/bookings")
	{
		bookingGroup.POST("", hb.RequestBookingHandler)
	}
	appointments := r.Group("/api/appointments")
	{
		appointments.GET("/:appointmentID", hb.GetAppointmentHandler)
		appointments.PATCH("/:appointmentID/status", hb.TransitionAppointmentHandler)
		appointments.POST("/:appointmentID/reschedule", hb.RescheduleHandler)
	}
}

// RegisterMaintenanceRoutes sets up endpoints for operator-triggered jobs.
func RegisterMaintenanceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	maintenance := r.Group("/api/maintenance")
	{
		maintenance.POST("/weekly-sync", hb.RunWeeklySyncHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAvailabilityRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterMaintenanceRoutes(r, hb)
}
