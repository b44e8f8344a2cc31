package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"draftroom/internal/draft"
	"draftroom/internal/service"
)

type ManualHandler struct {
	Svc *service.DraftService
}

func (h *ManualHandler) Register(r *gin.Engine) {
	r.POST("/manual", h.manual)
}

type manualRequest struct {
	Command string `json:"command" binding:"required"`
}

func (h *ManualHandler) manual(c *gin.Context) {
	var req manualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "command is required", nil)
		return
	}

	res, err := h.Svc.Manual(req.Command)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, draft.ErrUnknownPlayer) {
			status = http.StatusNotFound
		}
		Error(c, status, err.Error(), nil)
		return
	}
	Ok(c, res, nil)
}
