package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/streamgate/corebridge/internal/sysproxy"
)

func (s *Server) handleToggleSystemProxy(c *gin.Context) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, err)
		return
	}

	if !req.Enabled {
		doc := s.store.Get()
		result := sysproxy.Unconfigure(string(doc.SystemProxyServiceName))
		_ = s.store.RecordSystemProxy(false, "")
		c.JSON(http.StatusOK, result)
		return
	}

	result := sysproxy.Configure(s.bridge.HTTPPort)
	if err := s.store.RecordSystemProxy(result.Success, result.ServiceName); err != nil {
		jsonError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleCheckSystemProxy(c *gin.Context) {
	doc := s.store.Get()
	c.JSON(http.StatusOK, gin.H{
		"enabled":     doc.SystemProxyEnabledByApp,
		"serviceName": doc.SystemProxyServiceName,
	})
}
