package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetward/internal/domain"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: reason is required", domain.ErrValidation), http.StatusBadRequest},
		{domain.ErrRoomNotFound, http.StatusNotFound},
		{domain.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("open: %w", domain.ErrRoomFull), http.StatusConflict},
		{domain.ErrAdmissionClosed, http.StatusConflict},
		{domain.ErrInvalidTransition, http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestFromError_HidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	FromError(c, errors.New("connection refused to 10.0.0.5"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	assert.Len(t, c.Errors, 1)
}

func TestFromError_DomainCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	FromError(c, fmt.Errorf("%w: ICU-01 (1/1)", domain.ErrRoomFull))

	require.Equal(t, http.StatusConflict, w.Code)
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, domain.CodeRoomFull, body.Error.Code)
	assert.Contains(t, body.Error.Message, "ICU-01")
}
