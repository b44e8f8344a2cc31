package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"draftroom/internal/advisor"
	"draftroom/internal/service"
)

type AdviceHandler struct {
	Svc *service.DraftService
	// Advisor is optional; without it advice comes straight from the engine.
	Advisor *advisor.Advisor
}

func (h *AdviceHandler) Register(r *gin.Engine) {
	r.GET("/advice", h.advice)
}

func (h *AdviceHandler) advice(c *gin.Context) {
	player := strings.TrimSpace(c.Query("player"))
	if player == "" {
		Error(c, http.StatusBadRequest, "player is required", nil)
		return
	}
	bid := decimal.Zero
	if raw := strings.TrimSpace(c.Query("bid")); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			Error(c, http.StatusBadRequest, "bid must be a non-negative integer", nil)
			return
		}
		bid = decimal.NewFromInt(n)
	}

	if h.Advisor != nil {
		Ok(c, h.Advisor.Advise(c.Request.Context(), player, bid), nil)
		return
	}
	Ok(c, h.Svc.Advice(player, bid), nil)
}
