package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"draftroom/internal/models"
	"draftroom/internal/service"
)

// UpdateHandler receives the cumulative scraper snapshots that drive the
// whole system.
type UpdateHandler struct {
	Svc *service.DraftService
}

func (h *UpdateHandler) Register(r *gin.Engine) {
	r.POST("/draft_update", h.draftUpdate)
}

func (h *UpdateHandler) draftUpdate(c *gin.Context) {
	var u models.DraftUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		Error(c, http.StatusBadRequest, "invalid payload: "+err.Error(), nil)
		return
	}

	out, err := h.Svc.Ingest(u)
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	resp := gin.H{
		"status":        "received",
		"newly_drafted": len(out.Result.NewlyDrafted),
	}
	if len(out.Result.SkippedNames) > 0 {
		resp["skipped"] = out.Result.SkippedNames
	}
	if out.Advice != nil {
		resp["advice"] = out.Advice
		resp["suggested_bid"] = out.Advice.MaxBid
	}
	Ok(c, resp, nil)
}
