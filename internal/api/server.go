// Package api exposes guest-list ingestion and invitation dispatch over HTTP.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

func RegisterRoutes(server *echo.Echo, h *Handler) {
	v1 := server.Group("/api/v1")

	v1.POST("/guest-lists", h.LoadGuestList)
	v1.GET("/guest-lists", h.ListGuests)
	v1.GET("/guest-lists/template", h.DownloadTemplate)
	v1.POST("/guest-lists/reset-failed", h.ResetFailed)

	v1.GET("/templates", h.ListTemplates)

	v1.GET("/invitations/preview", h.Preview)
	v1.POST("/invitations/dispatch", h.StartDispatch)
	v1.GET("/invitations/dispatch", h.DispatchStatus)
	v1.DELETE("/invitations/dispatch", h.AbortDispatch)
	v1.GET("/invitations/recipients", h.ListRecipients)
	v1.GET("/invitations/history", h.ListRuns)
	v1.GET("/invitations/history/:run_id", h.ListAttempts)
}

// NewServer builds the echo server with middleware, routes and a health check
func NewServer(h *Handler, log zerolog.Logger) *echo.Echo {
	server := echo.New()
	server.HideBanner = true
	server.HidePort = true

	server.Use(middleware.Recover())
	server.Use(middleware.RequestID())
	server.Use(middleware.BodyLimit("10M"))
	server.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("Request")
			return nil
		},
	}))

	RegisterRoutes(server, h)

	server.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return server
}
