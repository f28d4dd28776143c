// Package directory exposes the clinic's pet, owner and doctor records to
// ward staff. The ward reads them and never edits them.
package directory

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vetward/internal/domain"
	"vetward/internal/pkg/response"
)

// Directory is the read side of the clinic directory.
type Directory interface {
	GetPet(ctx context.Context, id string) (*domain.Pet, error)
	GetOwner(ctx context.Context, id string) (*domain.Owner, error)
	GetDoctor(ctx context.Context, id string) (*domain.Doctor, error)
	SearchPets(ctx context.Context, q string, limit int) ([]domain.Pet, error)
	ListDoctors(ctx context.Context) ([]domain.Doctor, error)
}

type Handler struct {
	dir Directory
}

func NewHandler(dir Directory) *Handler {
	return &Handler{dir: dir}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/directory/pets", h.SearchPets)
	rg.GET("/directory/pets/:id", h.GetPet)
	rg.GET("/directory/owners/:id", h.GetOwner)
	rg.GET("/directory/doctors", h.ListDoctors)
}

// SearchPets handles GET /api/v1/directory/pets?q=&limit=
func (h *Handler) SearchPets(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	pets, err := h.dir.SearchPets(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"pets": pets})
}

func (h *Handler) GetPet(c *gin.Context) {
	pet, err := h.dir.GetPet(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	owner, err := h.dir.GetOwner(c.Request.Context(), pet.OwnerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"pet": pet, "owner": owner})
}

func (h *Handler) GetOwner(c *gin.Context) {
	owner, err := h.dir.GetOwner(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"owner": owner})
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.dir.ListDoctors(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"doctors": doctors})
}
