package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/streamgate/corebridge/internal/dnsprobe"
)

var errScanAlreadyRunning = errors.New("a DNS scan is already running")

const dnsCheckTimeout = 5 * time.Second

func (s *Server) handleDNSCheck(c *gin.Context) {
	var req struct {
		Server string `json:"server" binding:"required"`
		Domain string `json:"domain" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, err)
		return
	}

	result, err := s.engine.CheckSingle(c.Request.Context(), req.Server, req.Domain)
	if err != nil {
		jsonError(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type startScanRequest struct {
	Servers []string        `json:"servers" binding:"required"`
	Domain  string          `json:"domain" binding:"required"`
	Mode    dnsprobe.Mode   `json:"mode" binding:"required"`
	Timeout *uint32         `json:"timeoutMs"`
}

func (s *Server) handleDNSScanStart(c *gin.Context) {
	var req startScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, err)
		return
	}
	if s.engine.IsScanning() {
		jsonError(c, http.StatusConflict, errScanAlreadyRunning)
		return
	}

	timeout := dnsCheckTimeout
	if req.Timeout != nil {
		timeout = time.Duration(*req.Timeout) * time.Millisecond
	}

	s.engine.StartScan(req.Servers, req.Domain, req.Mode, timeout, &sseScanSink{events: s.events})
	c.Status(http.StatusAccepted)
}

func (s *Server) handleDNSScanStop(c *gin.Context) {
	s.engine.StopScan()
	c.Status(http.StatusNoContent)
}

// sseScanSink publishes the four streaming scan events from spec.md §6 onto
// the broadcaster, the loopback-HTTP analog of connection.rs's direct
// webview emit() calls.
type sseScanSink struct {
	events *broadcaster
}

func (s *sseScanSink) ScanItemStart(server string) {
	s.events.publish("dns-scan-item-start", gin.H{"server": server})
}

func (s *sseScanSink) ScanResult(result dnsprobe.CheckResult) {
	s.events.publish("dns-scan-result", result)
}

func (s *sseScanSink) ScanProgress(progress dnsprobe.Progress) {
	s.events.publish("dns-scan-progress", progress)
}

func (s *sseScanSink) ScanComplete() {
	s.events.publish("dns-scan-complete", gin.H{})
}
