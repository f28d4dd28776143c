package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"vetward/internal/domain"
)

var _ domain.Store = (*Store)(nil)

// Store is the gorm-backed ward store. Every repository it hands out shares
// the same *gorm.DB, which inside InTx is the transaction handle.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Rooms() domain.RoomStore           { return NewRoomRepository(s.db) }
func (s *Store) Admissions() domain.AdmissionStore { return NewAdmissionRepository(s.db) }
func (s *Store) Audit() domain.AuditStore          { return NewAuditRepository(s.db) }

func (s *Store) InTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// isUniqueViolation recognises duplicate-key errors from every supported driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(strings.ToLower(msg), "unique constraint")
}
