package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"draftroom/internal/draft"
)

type HealthHandler struct {
	Store *draft.Store
}

func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)
	r.GET("/readyz", h.ready)
}

func (h *HealthHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ready reports whether the player pool is loaded; advice before that point
// would be garbage.
func (h *HealthHandler) ready(c *gin.Context) {
	if h.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "store_missing"})
		return
	}
	if h.Store.Summary().TotalPlayers == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "pool_empty"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
