package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func (h *Handlers) HealthCheck(c *gin.Context) {
	log.Debug("Health check endpoint hit")
	driver := ""
	if h.Config != nil {
		driver = h.Config.StoreDriver
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "ASMR Studio API is running",
		"store":   driver,
	})
}
