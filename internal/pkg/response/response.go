package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vetward/internal/domain"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// StatusFor maps a domain error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRoomNotFound), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRoomFull),
		errors.Is(err, domain.ErrAdmissionClosed),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes the error envelope for err. Internal errors are attached to
// the gin context for the request logger and never echoed to the client.
func FromError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		Error(c, status, domain.CodeInternal, "Internal error")
		return
	}
	Error(c, status, domain.ErrorCode(err), err.Error())
}
