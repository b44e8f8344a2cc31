package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"draftroom/internal/models"
	"draftroom/internal/service"
	"draftroom/internal/ticker"
)

// StateHandler serves read-only dashboard views of the live draft.
type StateHandler struct {
	Svc    *service.DraftService
	Ticker *ticker.Buffer
}

func (h *StateHandler) Register(r *gin.Engine) {
	r.GET("/state", h.state)
	r.GET("/players", h.players)
	r.GET("/inflation", h.inflation)
	r.GET("/ticker", h.tickerEvents)
	r.POST("/reset", h.reset)
}

func (h *StateHandler) state(c *gin.Context) {
	Ok(c, h.Svc.Snapshot(), nil)
}

func (h *StateHandler) players(c *gin.Context) {
	var pos models.Position
	if raw := strings.TrimSpace(c.Query("position")); raw != "" {
		parsed, err := models.ParsePosition(raw)
		if err != nil {
			Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		pos = parsed
	}
	limit := intQuery(c, "limit", 50)
	players := h.Svc.Store.RemainingPlayers(pos)
	if limit > 0 && limit < len(players) {
		players = players[:limit]
	}
	Ok(c, players, map[string]any{"count": len(players)})
}

func (h *StateHandler) inflation(c *gin.Context) {
	Ok(c, gin.H{
		"current": h.Svc.Store.Inflation(),
		"history": h.Svc.Store.InflationHistory(),
	}, nil)
}

func (h *StateHandler) tickerEvents(c *gin.Context) {
	if h.Ticker == nil {
		Ok(c, []ticker.Event{}, nil)
		return
	}
	Ok(c, h.Ticker.Recent(intQuery(c, "limit", 20)), nil)
}

// reset wipes draft state and truncates the recovery log. Destructive;
// meant for starting a fresh mock draft.
func (h *StateHandler) reset(c *gin.Context) {
	h.Svc.Store.Reset()
	if err := h.Svc.Log.Clear(); err != nil {
		Error(c, http.StatusInternalServerError, "state reset but log clear failed: "+err.Error(), nil)
		return
	}
	Ok(c, gin.H{"status": "reset"}, nil)
}
