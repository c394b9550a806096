package api

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/streamgate/corebridge/internal/diag"
)

func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": Version})
}

const proxyTestURL = "https://api.ipify.org?format=json"
const proxyTestTimeout = 10 * time.Second

func (s *Server) handleProxyTest(c *gin.Context) {
	proxyURL, err := url.Parse("http://127.0.0.1:" + strconv.Itoa(s.bridge.HTTPPort))
	if err != nil {
		jsonError(c, http.StatusInternalServerError, err)
		return
	}

	client := &http.Client{
		Timeout: proxyTestTimeout,
		Transport: &http.Transport{
			Proxy: http.ProxyURL(proxyURL),
		},
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), proxyTestTimeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, proxyTestURL, nil)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, err)
		return
	}

	resp, err := client.Do(req)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	c.JSON(http.StatusOK, gin.H{
		"success":      resp.StatusCode == http.StatusOK,
		"responseTime": time.Since(start).Milliseconds(),
		"body":         string(body),
	})
}

func (s *Server) handleStats(c *gin.Context) {
	snapshot := s.stats.Snapshot()

	up, down := s.bridge.Traffic().Tick()
	snapshot["traffic::up"] = up
	snapshot["traffic::down"] = down

	ipv4, ipv6 := diag.GatewayIPs()
	snapshot["gateway::ipv4"] = ipv4
	snapshot["gateway::ipv6"] = ipv6

	c.JSON(http.StatusOK, snapshot)
}
