package xaxd

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"xaxlib-go/pkg/log"
)

// API is the optional HTTP face of the daemon, for dashboards and health
// checks. It never exposes the translation protocol itself.
type API struct {
	echo   *echo.Echo
	server *Server
}

// NewAPI builds the HTTP API around a running server.
func NewAPI(s *Server) *API {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	a := &API{echo: e, server: s}
	e.GET("/healthz", a.getHealth)
	e.GET("/stats", a.getStats)
	if s.alloc != nil {
		e.GET("/leases", a.getLeases)
	}
	return a
}

func (a *API) getHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (a *API) getStats(c echo.Context) error {
	return c.JSON(http.StatusOK, a.server.Stats())
}

// getLeases lists the pool's active bindings. Only registered in pool mode.
func (a *API) getLeases(c echo.Context) error {
	return c.JSON(http.StatusOK, a.server.alloc.Leases())
}

// Run serves until Shutdown.
func (a *API) Run(addr string) {
	if err := a.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Errorf("api server stopped: %v", err)
	}
}

// Shutdown stops the HTTP server gracefully.
func (a *API) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.echo.Shutdown(ctx); err != nil {
		log.Errorf("api shutdown failed: %v", err)
	}
}
