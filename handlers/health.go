package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldserve/utils"
)

// HealthHandler reports the latest dependency health snapshot.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	if status.CheckedAt.IsZero() {
		// Monitor has not completed its first pass yet.
		c.JSON(http.StatusOK, gin.H{"status": "starting"})
		return
	}

	httpStatus := http.StatusOK
	if !status.Mongo {
		httpStatus = http.StatusServiceUnavailable
	}
	for _, ok := range status.Redis {
		if !ok {
			httpStatus = http.StatusServiceUnavailable
		}
	}
	c.JSON(httpStatus, status)
}
