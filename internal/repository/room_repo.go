package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vetward/internal/domain"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) List(ctx context.Context) ([]domain.Room, error) {
	var rows []roomModel
	if err := r.db.WithContext(ctx).Order("number ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Room, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainRoom(m))
	}
	return out, nil
}

func (r *RoomRepository) GetByNumber(ctx context.Context, number string) (*domain.Room, error) {
	var m roomModel
	err := r.db.WithContext(ctx).Where("number = ?", number).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrRoomNotFound, number)
		}
		return nil, err
	}
	room := toDomainRoom(m)
	return &room, nil
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	m := toRoomModel(room)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: room number %s already exists", domain.ErrValidation, room.Number)
		}
		return err
	}
	*room = toDomainRoom(m)
	return nil
}

func (r *RoomRepository) UpdateRate(ctx context.Context, number string, rate decimal.Decimal) error {
	res := r.db.WithContext(ctx).
		Model(&roomModel{}).
		Where("number = ?", number).
		Updates(map[string]any{
			"daily_rate_cents": toCents(rate),
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrRoomNotFound, number)
	}
	return nil
}

// Reserve takes one slot with a single conditional update, so two concurrent
// callers can never both pass the capacity check.
func (r *RoomRepository) Reserve(ctx context.Context, number string) (decimal.Decimal, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&roomModel{}).
		Where("number = ? AND occupied < capacity", number).
		Updates(map[string]any{
			"occupied":   gorm.Expr("occupied + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return decimal.Zero, res.Error
	}

	var m roomModel
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("number = ?", number).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrRoomNotFound, number)
		}
		return decimal.Zero, err
	}
	if res.RowsAffected == 0 {
		return decimal.Zero, fmt.Errorf("%w: %s (%d/%d)", domain.ErrRoomFull, number, m.Occupied, m.Capacity)
	}
	return fromCents(m.DailyRateCents), nil
}

func (r *RoomRepository) Release(ctx context.Context, number string) (bool, error) {
	db := r.db.WithContext(ctx)
	res := db.Model(&roomModel{}).
		Where("number = ? AND occupied > 0", number).
		Updates(map[string]any{
			"occupied":   gorm.Expr("occupied - 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return false, nil
	}

	var cnt int64
	if err := db.Model(&roomModel{}).Where("number = ?", number).Count(&cnt).Error; err != nil {
		return false, err
	}
	if cnt == 0 {
		return false, fmt.Errorf("%w: %s", domain.ErrRoomNotFound, number)
	}
	return true, nil
}
