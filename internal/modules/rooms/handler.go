package rooms

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
	rg.GET("/rooms", h.List)
	rg.GET("/rooms/available", h.Available)
	rg.GET("/rooms/occupancy", h.Occupancy)
	rg.POST("/rooms", h.Create)
	rg.GET("/rooms/:number", h.Get)
	rg.PATCH("/rooms/:number/rate", h.UpdateRate)
}

// List handles GET /api/v1/rooms?type=
func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), c.Query("type"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rooms": list})
}

// Available handles GET /api/v1/rooms/available?type=
func (h *Handler) Available(c *gin.Context) {
	list, err := h.service.FindAvailable(c.Request.Context(), c.Query("type"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rooms": list})
}

func (h *Handler) Occupancy(c *gin.Context) {
	summary, err := h.service.Occupancy(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"occupancy": summary})
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	room, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"room": room})
}

func (h *Handler) Get(c *gin.Context) {
	room, err := h.service.Get(c.Request.Context(), c.Param("number"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"room": room})
}

func (h *Handler) UpdateRate(c *gin.Context) {
	var req UpdateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	room, err := h.service.UpdateRate(c.Request.Context(), c.Param("number"), req.DailyRate)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"room": room})
}
