package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/screenlink/screenlink/internal/application/config"
)

type IceHandler struct {
	cfg *config.Config
}

func NewIceHandler(cfg *config.Config) *IceHandler {
	return &IceHandler{cfg: cfg}
}

// Handler для выдачи ICE серверов. NAT traversal остается делом браузерного
// peer-connection: сервер только сообщает, какими STUN/TURN пользоваться.
func (h *IceHandler) IceServers(c echo.Context) error {
	return c.JSON(http.StatusOK, h.cfg.ICEServers)
}
