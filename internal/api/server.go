// Package api exposes the Connection Orchestrator, Settings store, DNS
// Probe Engine, and Proxy Bridge as a loopback-only HTTP+JSON surface,
// the Go realization of spec.md §6's IPC command table. Grounded on
// main.go's `r.GET("/stats", ...)` admin endpoint pattern.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/streamgate/corebridge/internal/bridge"
	"github.com/streamgate/corebridge/internal/diag"
	"github.com/streamgate/corebridge/internal/dnsprobe"
	"github.com/streamgate/corebridge/internal/orchestrator"
	"github.com/streamgate/corebridge/internal/settings"
	"github.com/streamgate/corebridge/internal/supervisor"
)

// Version is set at build time via -ldflags, matching the teacher's own
// internal/version package shape (kept local here since that package is
// private to its own module).
var Version = "dev"

// Server bundles every collaborator the admin HTTP surface fronts.
type Server struct {
	orch     *orchestrator.Orchestrator
	store    *settings.Store
	engine   *dnsprobe.Engine
	bridge   *bridge.Bridge
	stats    *diag.Registry
	events   *broadcaster

	router *gin.Engine
}

// New builds the gin router with every route from spec.md §6 registered.
func New(orch *orchestrator.Orchestrator, store *settings.Store, probe *dnsprobe.Engine, br *bridge.Bridge, stats *diag.Registry) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		orch:   orch,
		store:  store,
		engine: probe,
		bridge: br,
		stats:  stats,
		events: newBroadcaster(),
		router: r,
	}

	orch.OnStatusUpdate(func(e orchestrator.Event) {
		s.events.publish("status-update", e)
	})
	go s.pumpProcessOutput()

	v1 := r.Group("/v1")
	{
		v1.POST("/connection/start", s.handleConnectionStart)
		v1.POST("/connection/stop", s.handleConnectionStop)
		v1.GET("/connection/status", s.handleConnectionStatus)

		v1.GET("/settings", s.handleGetSettings)
		v1.PATCH("/settings", s.handlePatchSettings)

		v1.POST("/configs/import", s.handleImportConfigs)
		v1.GET("/configs/export", s.handleExportConfigs)

		v1.POST("/system-proxy", s.handleToggleSystemProxy)
		v1.GET("/system-proxy", s.handleCheckSystemProxy)

		v1.POST("/dns/check", s.handleDNSCheck)
		v1.POST("/dns/scan", s.handleDNSScanStart)
		v1.DELETE("/dns/scan", s.handleDNSScanStop)

		v1.GET("/version", s.handleVersion)
		v1.POST("/proxy/test", s.handleProxyTest)

		v1.GET("/stats", s.handleStats)
		v1.GET("/events", s.handleEvents)
	}

	return s
}

// Handler returns the underlying http.Handler for use with http.Server.
func (s *Server) Handler() http.Handler { return s.router }

func jsonError(c *gin.Context, code int, err error) {
	c.JSON(code, gin.H{"error": err.Error()})
}

// pumpProcessOutput republishes every demuxed tunnel client stdout/stderr
// line as a stream-log/stream-error SSE event, for the lifetime of the
// server. The channel is never closed, so this runs until process exit.
func (s *Server) pumpProcessOutput() {
	for line := range s.orch.Output() {
		name := "stream-log"
		if line.Stream == supervisor.StreamStderr {
			name = "stream-error"
		}
		s.events.publish(name, gin.H{"line": line.Data})
	}
}
