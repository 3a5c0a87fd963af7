// File: fixmo/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Availability endpoints
	ResolveAvailabilityHandler gin.HandlerFunc
	SetWeeklyTemplateHandler   gin.HandlerFunc
	ListTemplateHandler        gin.HandlerFunc
	SetTemplateActiveHandler   gin.HandlerFunc

	// Booking endpoints
	RequestBookingHandler        gin.HandlerFunc
	GetAppointmentHandler        gin.HandlerFunc
	TransitionAppointmentHandler gin.HandlerFunc
	RescheduleHandler            gin.HandlerFunc

	// Maintenance endpoints
	RunWeeklySyncHandler gin.HandlerFunc
}
