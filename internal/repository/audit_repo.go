package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vetward/internal/domain"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	m := auditModel{
		ID:        entry.ID,
		Action:    entry.Action,
		Entity:    entry.Entity,
		EntityID:  entry.EntityID,
		Details:   entry.Details,
		CreatedAt: entry.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	entry.CreatedAt = m.CreatedAt
	return nil
}

func (r *AuditRepository) ListForEntity(ctx context.Context, entity, entityID string) ([]domain.AuditEntry, error) {
	var rows []auditModel
	err := r.db.WithContext(ctx).
		Where("entity = ? AND entity_id = ?", entity, entityID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.AuditEntry, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.AuditEntry{
			ID:        m.ID,
			Action:    m.Action,
			Entity:    m.Entity,
			EntityID:  m.EntityID,
			Details:   m.Details,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}
