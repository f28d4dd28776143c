package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRecovery_PanicBecomes500(t *testing.T) {
	// Arrange
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	router := gin.New()
	router.Use(RequestID(), Recovery(logger))
	router.GET("/boom", func(c *gin.Context) {
		panic("ward exploded")
	})

	// Act
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "req-1")
	router.ServeHTTP(w, req)

	// Assert
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.Contains(t, buf.String(), "ward exploded")
	assert.Contains(t, buf.String(), "req-1")
}

func TestLogger_WritesRequestLine(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	router := gin.New()
	router.Use(RequestID(), Logger(logger))
	router.GET("/rooms", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/rooms?type=ICU", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Contains(t, buf.String(), `"path":"/rooms"`)
	assert.Contains(t, buf.String(), `"query":"type=ICU"`)
	assert.Contains(t, buf.String(), `"level":"info"`)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(CORS([]string{"https://ward.example"}))
	router.GET("/rooms", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	req.Header.Set("Origin", "https://ward.example")
	router.ServeHTTP(w, req)
	assert.Equal(t, "https://ward.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/rooms", nil)
	req.Header.Set("Origin", "https://evil.example")
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodOptions, "/rooms", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
