package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/streamgate/corebridge/internal/settings"
)

type importConfigsRequest struct {
	Text string `json:"text" binding:"required"`
}

func (s *Server) handleImportConfigs(c *gin.Context) {
	var req importConfigsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, err)
		return
	}

	result, err := settings.ImportConfigs(req.Text)
	if err != nil {
		jsonError(c, http.StatusBadRequest, err)
		return
	}

	doc := s.store.Get()
	doc.SavedConfigs = append(doc.SavedConfigs, result.Imported...)
	if err := s.store.Save(doc); err != nil {
		jsonError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imported": result.Imported,
		"errors":   result.Errors,
	})
}

func (s *Server) handleExportConfigs(c *gin.Context) {
	doc := s.store.Get()
	lines := settings.ExportConfigs(doc.SavedConfigs)
	c.String(http.StatusOK, strings.Join(lines, "\n"))
}
