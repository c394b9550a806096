package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/streamgate/corebridge/internal/orchestrator"
)

// startConnectionRequest mirrors orchestrator.Config field-for-field over
// the wire, using the same camelCase the frontend already speaks.
type startConnectionRequest struct {
	Resolvers         []string `json:"resolvers"`
	Domain            string   `json:"domain" binding:"required"`
	Authoritative     bool     `json:"authoritative"`
	TunMode           bool     `json:"tunMode"`
	KeepAliveInterval *uint32  `json:"keepAliveInterval"`
	CongestionControl string   `json:"congestionControl"`
	CustomDNSEnabled  bool     `json:"customDnsEnabled"`
}

func (s *Server) handleConnectionStart(c *gin.Context) {
	var req startConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, err)
		return
	}

	cfg := orchestrator.Config{
		Resolvers:         req.Resolvers,
		Domain:            req.Domain,
		Authoritative:     req.Authoritative,
		TunMode:           req.TunMode,
		KeepAliveInterval: req.KeepAliveInterval,
		CongestionControl: req.CongestionControl,
		CustomDNSEnabled:  req.CustomDNSEnabled,
	}

	if err := s.orch.Start(c.Request.Context(), cfg); err != nil {
		jsonError(c, http.StatusConflict, err)
		return
	}
	c.JSON(http.StatusOK, s.orch.Status())
}

func (s *Server) handleConnectionStop(c *gin.Context) {
	s.orch.Stop()
	c.JSON(http.StatusOK, s.orch.Status())
}

func (s *Server) handleConnectionStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.orch.Status())
}
