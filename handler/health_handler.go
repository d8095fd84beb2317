package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"notetaker/storage"
)

// HealthHandler reports the active backend and its connectivity.
func HealthHandler(c *gin.Context, store storage.Store) {
	if err := store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "degraded",
			"backend": store.Name(),
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"backend": store.Name(),
	})
}
