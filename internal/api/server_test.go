package api

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamgate/corebridge/internal/bridge"
	"github.com/streamgate/corebridge/internal/diag"
	"github.com/streamgate/corebridge/internal/dnsprobe"
	"github.com/streamgate/corebridge/internal/dnsresolve"
	"github.com/streamgate/corebridge/internal/orchestrator"
	"github.com/streamgate/corebridge/internal/settings"
	"github.com/streamgate/corebridge/internal/supervisor"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := settings.Open(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)

	sup := supervisor.New(nil)
	br := bridge.New(0, 0, 0, nil)
	resolver := dnsresolve.New()
	orch := orchestrator.New(store, sup, br, resolver)
	probe := dnsprobe.NewEngine()
	stats := diag.NewRegistry()

	return New(orch, store, probe, br, stats)
}

func TestGetSettingsReturnsDefaults(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/settings", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "\"mode\":\"slipstream\"")
}

func TestPatchSettingsRejectsInvalidResolver(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPatch, "/v1/settings", jsonBody(`{"resolvers":["not-an-ip"]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConnectionStartFailsWithoutBinary(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/connection/start", jsonBody(`{"domain":"example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestConnectionStatusReportsDisconnectedInitially(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/connection/status", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "disconnected")
}

func TestVersionReturnsConfiguredValue(t *testing.T) {
	s := newTestServer(t)
	Version = "1.2.3"

	req := httptest.NewRequest(http.MethodGet, "/v1/version", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1.2.3")
}

func TestExportConfigsRoundTripsThroughImport(t *testing.T) {
	s := newTestServer(t)

	importReq := httptest.NewRequest(http.MethodPost, "/v1/configs/import", jsonBody(
		`{"text":"ssgate:work//`+validConfigPayload()+`"}`))
	importReq.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, importReq)
	require.Equal(t, http.StatusOK, rec.Code)

	exportReq := httptest.NewRequest(http.MethodGet, "/v1/configs/export", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, exportReq)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ssgate:")
}

func TestStatsIncludesTrafficAndGatewayFields(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "traffic::up")
	assert.Contains(t, rec.Body.String(), "gateway::ipv4")
}

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}

func validConfigPayload() string {
	return "eyJkb21haW4iOiJleGFtcGxlLmNvbSJ9"
}
