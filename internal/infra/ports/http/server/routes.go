package server

import (
	"github.com/labstack/echo/v4"

	"github.com/screenlink/screenlink/internal/application/config"
	"github.com/screenlink/screenlink/internal/infra/ports/http/handlers"
	"github.com/screenlink/screenlink/internal/infra/ports/http/middleware"
)

func New(
	cfg *config.Config,
	wsHandler *handlers.WebSocketHandler,
	notificationHandler *handlers.NotificationHandler,
	statusHandler *handlers.StatusHandler,
	iceHandler *handlers.IceHandler,
) *echo.Echo {
	e := echo.New()

	e.HideBanner = true

	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())

	api := e.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/status", statusHandler.Status)

			v1.GET("/ice", iceHandler.IceServers)

			if cfg.WebsocketEnabled {
				v1.GET("/ws", wsHandler.Handle)
			}

			v1.POST("/notifications", notificationHandler.Publish)
			v1.GET("/notifications", notificationHandler.Fetch)
		}
	}

	return e
}
