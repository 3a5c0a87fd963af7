package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fixmo/utils"
)

// RunWeeklySyncHandler triggers the weekly reset/sync pass on demand. The
// job is idempotent, so an operator can fire it freely alongside the
// scheduled runs.
func (h *ScheduleHandler) RunWeeklySyncHandler(c *gin.Context) {
	report, err := h.Service.RunWeeklySync(c.Request.Context())
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Weekly sync completed", "report": report})
}

// HealthHandler reports the latest stored health snapshot.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "health": utils.GetHealthStatus()})
}
