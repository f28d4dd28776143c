package reporting

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vetward/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/reports/stats", h.Stats)
	rg.GET("/reports/today", h.Today)
}

func (h *Handler) Stats(c *gin.Context) {
	st, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, st)
}

func (h *Handler) Today(c *gin.Context) {
	list, err := h.service.Today(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"admissions": list, "count": len(list)})
}
