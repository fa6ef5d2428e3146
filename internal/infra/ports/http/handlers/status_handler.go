package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/screenlink/screenlink/internal/application/config"
	"github.com/screenlink/screenlink/internal/infra/adapters/memory"
)

// StatusHandler reports whether the push transport is usable in the current
// hosting environment. Clients probe it once and fall back to pure polling
// when the websocket is disabled.
type StatusHandler struct {
	cfg          *config.Config
	presenceRepo memory.PresenceRepository
	startedAt    time.Time
}

func NewStatusHandler(cfg *config.Config, presenceRepo memory.PresenceRepository) *StatusHandler {
	return &StatusHandler{
		cfg:          cfg,
		presenceRepo: presenceRepo,
		startedAt:    time.Now(),
	}
}

type statusResponse struct {
	WebsocketAvailable bool  `json:"websocketAvailable"`
	ConnectedPeers     int   `json:"connectedPeers"`
	UptimeSeconds      int64 `json:"uptimeSeconds"`
}

func (h *StatusHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{
		WebsocketAvailable: h.cfg.WebsocketEnabled,
		ConnectedPeers:     h.presenceRepo.Count(),
		UptimeSeconds:      int64(time.Since(h.startedAt).Seconds()),
	})
}
