// Package rooms is the ward's room registry: configuration, availability and
// the occupancy counter that admissions reserve and release.
package rooms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"vetward/internal/domain"
	"vetward/internal/pkg/validator"
)

type Service struct {
	store   domain.Store
	metrics Metrics
	log     zerolog.Logger
}

func NewService(store domain.Store, metrics Metrics, log zerolog.Logger) *Service {
	return &Service{
		store:   store,
		metrics: metrics,
		log:     log.With().Str("module", "rooms").Logger(),
	}
}

// parseTypeFilter treats "" and "all" as no filter.
func parseTypeFilter(s string) (domain.RoomType, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return "", nil
	}
	return domain.ParseRoomType(s)
}

func (s *Service) List(ctx context.Context, roomType string) ([]domain.Room, error) {
	typ, err := parseTypeFilter(roomType)
	if err != nil {
		return nil, err
	}
	all, err := s.store.Rooms().List(ctx)
	if err != nil {
		return nil, err
	}
	if typ == "" {
		return all, nil
	}
	out := make([]domain.Room, 0, len(all))
	for _, r := range all {
		if r.Type == typ {
			out = append(out, r)
		}
	}
	return out, nil
}

// FindAvailable lists rooms with at least one free slot, optionally of one type.
func (s *Service) FindAvailable(ctx context.Context, roomType string) ([]domain.Room, error) {
	list, err := s.List(ctx, roomType)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Room, 0, len(list))
	for _, r := range list {
		if r.Available() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, number string) (*domain.Room, error) {
	return s.store.Rooms().GetByNumber(ctx, strings.TrimSpace(number))
}

func (s *Service) Create(ctx context.Context, req CreateRoomRequest) (*domain.Room, error) {
	typ, err := domain.ParseRoomType(req.Type)
	if err != nil {
		return nil, err
	}
	room := &domain.Room{
		Number:    strings.TrimSpace(req.Number),
		Type:      typ,
		Capacity:  req.Capacity,
		DailyRate: req.DailyRate,
	}
	if err := validator.Check(room); err != nil {
		return nil, err
	}
	if err := room.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Rooms().Create(ctx, room); err != nil {
		return nil, err
	}

	s.log.Info().Str("room", room.Number).Str("type", string(room.Type)).Int("capacity", room.Capacity).Msg("room created")
	s.SyncOccupancy(ctx)
	return room, nil
}

// UpdateRate changes the daily rate for future admissions. Active admissions
// keep the rate they were opened with.
func (s *Service) UpdateRate(ctx context.Context, number string, rate decimal.Decimal) (*domain.Room, error) {
	if !rate.IsPositive() {
		return nil, fmt.Errorf("%w: daily rate must be positive", domain.ErrValidation)
	}
	if err := domain.CheckCents("daily rate", rate); err != nil {
		return nil, err
	}

	var updated *domain.Room
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		room, err := tx.Rooms().GetByNumber(ctx, number)
		if err != nil {
			return err
		}
		if err := tx.Rooms().UpdateRate(ctx, number, rate); err != nil {
			return err
		}
		if err := tx.Audit().Append(ctx, &domain.AuditEntry{
			Action:   domain.AuditRateChange,
			Entity:   domain.AuditEntityRoom,
			EntityID: number,
			Details:  fmt.Sprintf("daily rate %s -> %s", room.DailyRate.StringFixed(2), rate.StringFixed(2)),
		}); err != nil {
			return err
		}
		updated, err = tx.Rooms().GetByNumber(ctx, number)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("room", number).Str("daily_rate", rate.StringFixed(2)).Msg("room rate updated")
	return updated, nil
}

// Reserve takes one slot in its own transaction.
func (s *Service) Reserve(ctx context.Context, number string) (decimal.Decimal, error) {
	var rate decimal.Decimal
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		rate, err = s.ReserveIn(ctx, tx, number)
		return err
	})
	if err == nil {
		s.SyncOccupancy(ctx)
	}
	return rate, err
}

// ReserveIn takes one slot within the caller's transaction and returns the
// room's current daily rate. The counter is checked and incremented in one step.
func (s *Service) ReserveIn(ctx context.Context, tx domain.Tx, number string) (decimal.Decimal, error) {
	rate, err := tx.Rooms().Reserve(ctx, number)
	if err != nil {
		if errors.Is(err, domain.ErrRoomFull) {
			s.metrics.RoomFull(number)
			s.log.Info().Str("room", number).Msg("reservation rejected, room full")
		}
		return decimal.Zero, err
	}
	return rate, nil
}

// Release frees one slot in its own transaction.
func (s *Service) Release(ctx context.Context, number string) error {
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		return s.ReleaseIn(ctx, tx, number)
	})
	if err == nil {
		s.SyncOccupancy(ctx)
	}
	return err
}

// ReleaseIn frees one slot within the caller's transaction. The counter never
// goes below zero; a release on an empty room is recorded and otherwise ignored.
func (s *Service) ReleaseIn(ctx context.Context, tx domain.Tx, number string) error {
	underflow, err := tx.Rooms().Release(ctx, number)
	if err != nil {
		return err
	}
	if !underflow {
		return nil
	}

	s.metrics.ReleaseUnderflow(number)
	s.log.Warn().Str("room", number).Msg("release on room with zero occupancy, counter left at 0")
	return tx.Audit().Append(ctx, &domain.AuditEntry{
		Action:   domain.AuditReleaseFloor,
		Entity:   domain.AuditEntityRoom,
		EntityID: number,
		Details:  "release requested while occupied was 0",
	})
}

// Occupancy sums slots per room type, in the order room types are declared.
func (s *Service) Occupancy(ctx context.Context) ([]TypeOccupancy, error) {
	list, err := s.store.Rooms().List(ctx)
	if err != nil {
		return nil, err
	}
	return SummarizeByType(list), nil
}

// SyncOccupancy pushes the current per-type occupancy to the metrics gauges.
// Failures are logged only; gauges catch up on the next change.
func (s *Service) SyncOccupancy(ctx context.Context) {
	summary, err := s.Occupancy(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("occupancy sync failed")
		return
	}
	for _, t := range summary {
		s.metrics.SetOccupancy(t.Type, t.Occupied, t.Capacity)
	}
}

// SummarizeByType groups rooms by type. Every known type is present, even with no rooms.
func SummarizeByType(list []domain.Room) []TypeOccupancy {
	types := domain.RoomTypes()
	idx := make(map[domain.RoomType]int, len(types))
	out := make([]TypeOccupancy, 0, len(types))
	for _, t := range types {
		idx[t] = len(out)
		out = append(out, TypeOccupancy{Type: string(t)})
	}
	for _, r := range list {
		i, ok := idx[r.Type]
		if !ok {
			continue
		}
		out[i].Rooms++
		out[i].Occupied += r.Occupied
		out[i].Capacity += r.Capacity
	}
	return out
}
