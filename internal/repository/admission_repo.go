package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vetward/internal/domain"
)

type AdmissionRepository struct {
	db *gorm.DB
}

func NewAdmissionRepository(db *gorm.DB) *AdmissionRepository {
	return &AdmissionRepository{db: db}
}

func (r *AdmissionRepository) Create(ctx context.Context, a *domain.Admission) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	m := toAdmissionModel(a)
	db := r.db.WithContext(ctx)
	if err := db.Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: admission %s already exists", domain.ErrValidation, a.ID)
		}
		return err
	}
	a.CreatedAt, a.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return r.writeChildren(db, a)
}

func (r *AdmissionRepository) GetByID(ctx context.Context, id string) (*domain.Admission, error) {
	db := r.db.WithContext(ctx)
	var m admissionModel
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: admission %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	list, err := r.hydrate(db, []admissionModel{m})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

// Save rewrites the admission row, then replaces its treatments and discharge record.
func (r *AdmissionRepository) Save(ctx context.Context, a *domain.Admission) error {
	db := r.db.WithContext(ctx)
	a.UpdatedAt = time.Now().UTC()
	m := toAdmissionModel(a)
	res := db.Model(&admissionModel{}).
		Where("id = ?", a.ID).
		Select("*").
		Omit("created_at").
		Updates(&m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: admission %s", domain.ErrNotFound, a.ID)
	}

	if err := db.Where("admission_id = ?", a.ID).Delete(&treatmentModel{}).Error; err != nil {
		return err
	}
	if err := db.Where("admission_id = ?", a.ID).Delete(&dischargeModel{}).Error; err != nil {
		return err
	}
	return r.writeChildren(db, a)
}

func (r *AdmissionRepository) List(ctx context.Context) ([]domain.Admission, error) {
	db := r.db.WithContext(ctx)
	var rows []admissionModel
	if err := db.Order("admitted_at DESC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.hydrate(db, rows)
}

func (r *AdmissionRepository) AdmissionIDForTreatment(ctx context.Context, treatmentID string) (string, error) {
	var m treatmentModel
	err := r.db.WithContext(ctx).Select("admission_id").Where("id = ?", treatmentID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: treatment %s", domain.ErrNotFound, treatmentID)
		}
		return "", err
	}
	return m.AdmissionID, nil
}

func (r *AdmissionRepository) writeChildren(db *gorm.DB, a *domain.Admission) error {
	if len(a.Treatments) > 0 {
		rows := make([]treatmentModel, 0, len(a.Treatments))
		for _, t := range a.Treatments {
			t.AdmissionID = a.ID
			rows = append(rows, toTreatmentModel(t))
		}
		if err := db.Create(&rows).Error; err != nil {
			return err
		}
	}
	if a.Discharge != nil {
		dm := toDischargeModel(a.ID, a.Discharge)
		if err := db.Create(&dm).Error; err != nil {
			return err
		}
	}
	return nil
}

// hydrate loads treatments and discharge records for rows with two queries total.
func (r *AdmissionRepository) hydrate(db *gorm.DB, rows []admissionModel) ([]domain.Admission, error) {
	if len(rows) == 0 {
		return []domain.Admission{}, nil
	}
	ids := make([]string, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.ID)
	}

	var treatments []treatmentModel
	if err := db.Where("admission_id IN ?", ids).Order("seq ASC").Find(&treatments).Error; err != nil {
		return nil, err
	}
	byAdmission := make(map[string][]domain.Treatment, len(rows))
	for _, t := range treatments {
		byAdmission[t.AdmissionID] = append(byAdmission[t.AdmissionID], toDomainTreatment(t))
	}

	var discharges []dischargeModel
	if err := db.Where("admission_id IN ?", ids).Find(&discharges).Error; err != nil {
		return nil, err
	}
	records := make(map[string]*domain.DischargeRecord, len(discharges))
	for _, d := range discharges {
		records[d.AdmissionID] = toDomainDischarge(d)
	}

	out := make([]domain.Admission, 0, len(rows))
	for _, m := range rows {
		a := toDomainAdmission(m)
		if list := byAdmission[m.ID]; list != nil {
			a.Treatments = list
		}
		a.Discharge = records[m.ID]
		out = append(out, a)
	}
	return out, nil
}
