package handlers

import (
	"net/http"

	"fixmo/models"
	"fixmo/services/schedule"
	"fixmo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type bookingRequestBody struct {
	ProviderID        string  `json:"providerId" binding:"required"`
	CustomerID        string  `json:"customerId" binding:"required"`
	Date              string  `json:"date" binding:"required"`
	StartTime         string  `json:"startTime" binding:"required"`
	RepairDescription string  `json:"repairDescription" binding:"required"`
	FinalPrice        float64 `json:"finalPrice,omitempty"`
}

// RequestBookingHandler routes a slot-booking request through the conflict
// guard. A taken slot is a booking rejection (409), not a system error.
func (h *ScheduleHandler) RequestBookingHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var body bookingRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		logger.Error("Invalid booking request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}

	start, err := models.ParseClock(body.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	appt, err := h.Service.RequestBooking(c.Request.Context(), schedule.BookingRequest{
		ProviderID:        body.ProviderID,
		CustomerID:        body.CustomerID,
		Date:              body.Date,
		Start:             start,
		RepairDescription: body.RepairDescription,
		FinalPrice:        body.FinalPrice,
	})
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Booking confirmed",
		"appointment": appt,
	})
}

// GetAppointmentHandler fetches one appointment by id.
func (h *ScheduleHandler) GetAppointmentHandler(c *gin.Context) {
	id := c.Param("appointmentID")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing appointment ID in path"})
		return
	}

	appt, err := h.Service.GetAppointment(c.Request.Context(), id)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// TransitionAppointmentHandler applies a status change validated against
// the appointment state machine.
func (h *ScheduleHandler) TransitionAppointmentHandler(c *gin.Context) {
	id := c.Param("appointmentID")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing appointment ID in path"})
		return
	}

	var body struct {
		Status             string   `json:"status" binding:"required"`
		CancellationReason string   `json:"cancellationReason,omitempty"`
		FinalPrice         *float64 `json:"finalPrice,omitempty"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}

	appt, err := h.Service.TransitionAppointment(c.Request.Context(), id,
		models.AppointmentStatus(body.Status),
		schedule.TransitionFields{
			CancellationReason: body.CancellationReason,
			FinalPrice:         body.FinalPrice,
		})
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// RescheduleHandler moves an open appointment to a new occurrence.
func (h *ScheduleHandler) RescheduleHandler(c *gin.Context) {
	id := c.Param("appointmentID")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing appointment ID in path"})
		return
	}

	var body struct {
		Date      string `json:"date" binding:"required"`
		StartTime string `json:"startTime" binding:"required"`
		Reason    string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}

	start, err := models.ParseClock(body.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	appt, err := h.Service.RescheduleAppointment(c.Request.Context(), id, body.Date, start, body.Reason)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}
