package admission

import (
	"errors"
	"io"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"vetward/internal/modules/reporting"
	"vetward/internal/modules/treatment"
	"vetward/internal/pkg/response"
)

type Handler struct {
	service *Service
	reports *reporting.Service
}

func NewHandler(service *Service, reports *reporting.Service) *Handler {
	return &Handler{service: service, reports: reports}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/admissions", h.Open)
	rg.GET("/admissions", h.List)
	rg.GET("/admissions/:id", h.Get)
	rg.GET("/admissions/:id/invoice", h.Invoice)
	rg.GET("/admissions/:id/audit", h.Audit)
	rg.POST("/admissions/:id/treatments", h.AddTreatment)
	rg.GET("/admissions/:id/treatments", h.Timeline)
	rg.POST("/admissions/:id/discharge", h.Discharge)
	rg.POST("/admissions/:id/transfer", h.Transfer)

	rg.PATCH("/treatments/:id/status", h.UpdateTreatmentStatus)
	rg.DELETE("/treatments/:id", h.RemoveTreatment)
}

func badBody(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
}

// Open handles POST /api/v1/admissions
func (h *Handler) Open(c *gin.Context) {
	var req OpenAdmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	in, err := h.service.Resolve(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	a, err := h.service.Open(c.Request.Context(), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"admission": a})
}

// List handles GET /api/v1/admissions?status=&doctor_id=&room_type=&from=&to=
func (h *Handler) List(c *gin.Context) {
	var p reporting.FilterParams
	if err := c.ShouldBindQuery(&p); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query", err.Error())
		return
	}

	list, err := h.reports.Search(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"admissions": list, "count": len(list)})
}

func (h *Handler) Get(c *gin.Context) {
	a, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"admission": a})
}

func (h *Handler) Invoice(c *gin.Context) {
	inv, err := h.service.Invoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"invoice": inv})
}

func (h *Handler) Audit(c *gin.Context) {
	entries, err := h.service.AuditTrail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"entries": entries})
}

func (h *Handler) AddTreatment(c *gin.Context) {
	var req AddTreatmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	t, err := h.service.AddTreatment(c.Request.Context(), c.Param("id"), treatment.Input{
		PerformedAt: req.PerformedAt,
		Type:        req.Type,
		Description: req.Description,
		DoctorName:  req.DoctorName,
		Cost:        req.Cost,
		Status:      req.Status,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"treatment": t})
}

// Timeline handles GET /api/v1/admissions/:id/treatments, newest first.
func (h *Handler) Timeline(c *gin.Context) {
	seq, err := h.service.Timeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"treatments": slices.Collect(seq)})
}

func (h *Handler) UpdateTreatmentStatus(c *gin.Context) {
	var req UpdateTreatmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	t, err := h.service.UpdateTreatmentStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"treatment": t})
}

func (h *Handler) RemoveTreatment(c *gin.Context) {
	if err := h.service.RemoveTreatment(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) Discharge(c *gin.Context) {
	var req DischargeInput
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badBody(c, err)
		return
	}

	a, err := h.service.Discharge(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"admission": a})
}

func (h *Handler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badBody(c, err)
		return
	}

	res, err := h.service.Transfer(c.Request.Context(), c.Param("id"), req.RoomNumber, req.Note)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}
