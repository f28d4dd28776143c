package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetward/internal/config"
	"vetward/internal/database"
	"vetward/internal/domain"
	"vetward/internal/pkg/metrics"
	"vetward/internal/repository"
)

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type testSuite struct {
	srv *Server
	rec *metrics.Recorder
}

func setupTestSuite(t *testing.T) *testSuite {
	t.Helper()

	db, err := database.Connect("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, repository.Migrate(db))

	dir := repository.NewDirectoryRepository(db)
	ctx := t.Context()
	require.NoError(t, dir.UpsertOwner(ctx, domain.Owner{ID: "own-1", Name: "Anna Lee"}))
	require.NoError(t, dir.UpsertPet(ctx, domain.Pet{ID: "pet-1", OwnerID: "own-1", Name: "Buddy", Species: "Dog"}))
	require.NoError(t, dir.UpsertDoctor(ctx, domain.Doctor{ID: "doc-1", Name: "Dr. Ortiz"}))

	cfg := &config.Config{
		GinMode:            gin.TestMode,
		Location:           time.UTC,
		CORSAllowedOrigins: []string{"*"},
	}
	rec := metrics.New()
	srv := New(cfg, db, zerolog.Nop(), rec)
	t.Cleanup(srv.Hub.Close)
	return &testSuite{srv: srv, rec: rec}
}

func (s *testSuite) makeRequest(method, path string, body interface{}) (*httptest.ResponseRecorder, TestResponse) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.srv.Engine.ServeHTTP(w, req)

	var resp TestResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestServer_WardFlow(t *testing.T) {
	s := setupTestSuite(t)

	w, resp := s.makeRequest(http.MethodPost, "/api/v1/rooms", map[string]interface{}{
		"number": "ICU-01", "type": "ICU", "capacity": 1, "daily_rate": "150",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, resp.Success)

	w, resp = s.makeRequest(http.MethodPost, "/api/v1/admissions", map[string]interface{}{
		"pet_id": "pet-1", "doctor_id": "doc-1", "room_number": "ICU-01", "reason": "observation",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	admission := resp.Data["admission"].(map[string]interface{})
	id := admission["id"].(string)

	w, resp = s.makeRequest(http.MethodGet, "/api/v1/rooms/available", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp.Data["rooms"])

	w, resp = s.makeRequest(http.MethodGet, "/api/v1/reports/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, resp.Data["active_admissions"])
	assert.EqualValues(t, 1, resp.Data["occupancy_rate"])

	w, resp = s.makeRequest(http.MethodGet, "/api/v1/reports/today", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, resp.Data["count"])

	w, _ = s.makeRequest(http.MethodPost, "/api/v1/admissions/"+id+"/discharge", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, resp = s.makeRequest(http.MethodGet, "/api/v1/rooms/occupancy", nil)
	require.Equal(t, http.StatusOK, w.Code)
	occupancy := resp.Data["occupancy"].([]interface{})
	icu := occupancy[0].(map[string]interface{})
	assert.Equal(t, "ICU", icu["type"])
	assert.EqualValues(t, 0, icu["occupied"])

	w = httptest.NewRecorder()
	s.srv.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `vetward_admissions_opened_total{room_type="ICU"} 1`)
	assert.Contains(t, body, `vetward_admissions_closed_total{outcome="discharged"} 1`)
}

func TestServer_HealthAndFallbacks(t *testing.T) {
	s := setupTestSuite(t)

	w, resp := s.makeRequest(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", resp.Data["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w, resp = s.makeRequest(http.MethodGet, "/api/v1/nothing-here", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/rooms", nil)
	req.Header.Set("Origin", "http://ward-display.local")
	w = httptest.NewRecorder()
	s.srv.Engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "PATCH"))
}
