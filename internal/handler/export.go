package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"draftroom/internal/service"
)

type ExportHandler struct {
	Svc *service.DraftService
}

func (h *ExportHandler) Register(r *gin.Engine) {
	r.GET("/export", h.export)
}

func (h *ExportHandler) export(c *gin.Context) {
	Ok(c, h.Svc.ExportResults(), nil)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
