package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vetward/internal/domain"
)

// DirectoryRepository serves pet, owner and doctor lookups from local tables
// populated by the clinic system or by `wardctl seed`.
type DirectoryRepository struct {
	db *gorm.DB
}

func NewDirectoryRepository(db *gorm.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

func (r *DirectoryRepository) GetPet(ctx context.Context, id string) (*domain.Pet, error) {
	var m petModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err, "pet", id)
	}
	return &domain.Pet{ID: m.ID, OwnerID: m.OwnerID, Name: m.Name, Species: m.Species, Breed: m.Breed}, nil
}

func (r *DirectoryRepository) GetOwner(ctx context.Context, id string) (*domain.Owner, error) {
	var m ownerModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err, "owner", id)
	}
	return &domain.Owner{ID: m.ID, Name: m.Name, Phone: m.Phone, Email: m.Email}, nil
}

func (r *DirectoryRepository) GetDoctor(ctx context.Context, id string) (*domain.Doctor, error) {
	var m doctorModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, notFound(err, "doctor", id)
	}
	return &domain.Doctor{ID: m.ID, Name: m.Name, Specialization: m.Specialization, Phone: m.Phone}, nil
}

// SearchPets matches q against pet name, species and breed, case-insensitively.
// An empty query lists every pet.
func (r *DirectoryRepository) SearchPets(ctx context.Context, q string, limit int) ([]domain.Pet, error) {
	if limit <= 0 {
		limit = 50
	}
	db := r.db.WithContext(ctx).Order("name ASC").Limit(limit)
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(species) LIKE ? OR LOWER(breed) LIKE ?", like, like, like)
	}
	var rows []petModel
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Pet, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.Pet{ID: m.ID, OwnerID: m.OwnerID, Name: m.Name, Species: m.Species, Breed: m.Breed})
	}
	return out, nil
}

func (r *DirectoryRepository) ListDoctors(ctx context.Context) ([]domain.Doctor, error) {
	var rows []doctorModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Doctor, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.Doctor{ID: m.ID, Name: m.Name, Specialization: m.Specialization, Phone: m.Phone})
	}
	return out, nil
}

// Upsert* write directory records, replacing rows with the same id.

func (r *DirectoryRepository) UpsertOwner(ctx context.Context, o domain.Owner) error {
	m := ownerModel{ID: o.ID, Name: o.Name, Phone: o.Phone, Email: o.Email}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&m).Error
}

func (r *DirectoryRepository) UpsertPet(ctx context.Context, p domain.Pet) error {
	m := petModel{ID: p.ID, OwnerID: p.OwnerID, Name: p.Name, Species: p.Species, Breed: p.Breed}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&m).Error
}

func (r *DirectoryRepository) UpsertDoctor(ctx context.Context, d domain.Doctor) error {
	m := doctorModel{ID: d.ID, Name: d.Name, Specialization: d.Specialization, Phone: d.Phone}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&m).Error
}

func notFound(err error, kind, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, id)
	}
	return err
}
