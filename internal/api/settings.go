package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/streamgate/corebridge/internal/settings"
)

func (s *Server) handleGetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Get())
}

// patchSettingsRequest carries the same per-field pointers as
// settings.Patch; a nil field is left untouched, matching settings.rs's
// per-key save() switch rather than a full-document overwrite.
type patchSettingsRequest struct {
	Resolvers         *[]string          `json:"resolvers"`
	Domain            *string            `json:"domain"`
	Mode              *string            `json:"mode"`
	Authoritative     *bool              `json:"authoritative"`
	Verbose           *bool              `json:"verbose"`
	Socks5Auth        *settings.SocksAuth `json:"socks5Auth"`
	KeepAliveInterval *uint32            `json:"keepAliveInterval"`
	SelectedConfigID  *string            `json:"selectedConfigId"`
	Language          *string            `json:"language"`
	Theme             *string            `json:"theme"`
	CustomDNS         *settings.CustomDNS `json:"customDns"`
}

func (s *Server) handlePatchSettings(c *gin.Context) {
	var req patchSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, err)
		return
	}

	if req.Resolvers != nil {
		if err := settings.ValidateResolvers(*req.Resolvers); err != nil {
			jsonError(c, http.StatusBadRequest, err)
			return
		}
	}

	doc, err := s.store.Merge(settings.Patch{
		Resolvers:         req.Resolvers,
		Domain:            req.Domain,
		Mode:              req.Mode,
		Authoritative:     req.Authoritative,
		Verbose:           req.Verbose,
		Socks5Auth:        req.Socks5Auth,
		KeepAliveInterval: req.KeepAliveInterval,
		SelectedConfigID:  req.SelectedConfigID,
		Language:          req.Language,
		Theme:             req.Theme,
		CustomDNS:         req.CustomDNS,
	})
	if err != nil {
		jsonError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
