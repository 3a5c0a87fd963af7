package handlers

import (
	"net/http"

	"fixmo/services/schedule"
	"fixmo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondScheduleError translates engine errors into HTTP responses. The
// whole conflict family collapses into one user-facing message; raw error
// detail goes to the operator log only.
func respondScheduleError(c *gin.Context, err error) {
	switch {
	case schedule.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case schedule.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case schedule.IsInvalidTransition(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case schedule.IsSlotUnavailable(err):
		c.JSON(http.StatusConflict, gin.H{
			"error": "This slot is no longer available, please choose another.",
		})
	case schedule.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{
			"error": "This record was updated by someone else, please refresh and retry.",
		})
	case schedule.IsTimeout(err):
		c.JSON(http.StatusGatewayTimeout, gin.H{
			"error": "Booking timed out, please retry.",
		})
	default:
		utils.GetLogger().Error("unhandled schedule error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
