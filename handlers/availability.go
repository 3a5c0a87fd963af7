package handlers

import (
	"net/http"

	"fixmo/models"
	"fixmo/services/schedule"
	"fixmo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScheduleHandler exposes the availability and booking engine over HTTP.
type ScheduleHandler struct {
	Service schedule.Engine
	Logger  *zap.Logger
}

func NewScheduleHandler(svc schedule.Engine, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{Service: svc, Logger: logger}
}

// ResolveAvailabilityHandler projects a provider's weekly template onto one
// concrete calendar date.
func (h *ScheduleHandler) ResolveAvailabilityHandler(c *gin.Context) {
	providerID := c.Param("providerID")
	if providerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing provider ID in path"})
		return
	}
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing date query parameter"})
		return
	}

	slots, err := h.Service.ResolveAvailability(c.Request.Context(), providerID, date)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "slots": slots})
}

// SetWeeklyTemplateHandler replaces the provider's full weekly template.
// The payload uses the legacy wire shape: weekday labels and HH:MM strings.
func (h *ScheduleHandler) SetWeeklyTemplateHandler(c *gin.Context) {
	logger := utils.GetLogger()

	providerID := c.Param("providerID")
	if providerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing provider ID in path"})
		return
	}

	var req models.SetWeeklyTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid weekly template request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}

	slots := make([]models.AvailabilitySlot, 0, len(req.Slots))
	for _, in := range req.Slots {
		day, err := models.ParseWeekday(in.DayOfWeek)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		start, err := models.ParseClock(in.StartTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		end, err := models.ParseClock(in.EndTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		active := true
		if in.Active != nil {
			active = *in.Active
		}
		slots = append(slots, models.AvailabilitySlot{
			ProviderID: providerID,
			DayOfWeek:  day,
			Start:      start,
			End:        end,
			Active:     active,
		})
	}

	saved, err := h.Service.SetWeeklyTemplate(c.Request.Context(), providerID, slots)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Weekly template updated",
		"slots":   saved,
	})
}

// ListTemplateHandler returns the provider's weekly template ordered by
// (day, start). Pass includeInactive=true to see retired windows.
func (h *ScheduleHandler) ListTemplateHandler(c *gin.Context) {
	providerID := c.Param("providerID")
	if providerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing provider ID in path"})
		return
	}
	activeOnly := c.Query("includeInactive") != "true"

	slots, err := h.Service.ListTemplate(c.Request.Context(), providerID, activeOnly)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// SetTemplateActiveHandler soft-toggles one template window.
func (h *ScheduleHandler) SetTemplateActiveHandler(c *gin.Context) {
	slotID := c.Param("slotID")
	if slotID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing slot ID in path"})
		return
	}

	var body struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Active == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid active field in request body"})
		return
	}

	if err := h.Service.SetTemplateActive(c.Request.Context(), slotID, *body.Active); err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Slot updated"})
}
