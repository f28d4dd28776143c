package reporting

import (
	"context"
	"time"

	"vetward/internal/domain"
)

type Service struct {
	store domain.Store
	now   func() time.Time
	loc   *time.Location
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store domain.Store, loc *time.Location, opts ...Option) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{store: store, now: func() time.Time { return time.Now().UTC() }, loc: loc}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) load(ctx context.Context) ([]domain.Admission, []domain.Room, error) {
	admissions, err := s.store.Admissions().List(ctx)
	if err != nil {
		return nil, nil, err
	}
	roomList, err := s.store.Rooms().List(ctx)
	if err != nil {
		return nil, nil, err
	}
	return admissions, roomList, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	admissions, roomList, err := s.load(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(admissions, roomList), nil
}

func (s *Service) Today(ctx context.Context) ([]domain.Admission, error) {
	admissions, err := s.store.Admissions().List(ctx)
	if err != nil {
		return nil, err
	}
	return AdmittedOn(admissions, s.now(), s.loc), nil
}

func (s *Service) Search(ctx context.Context, p FilterParams) ([]domain.Admission, error) {
	f, err := ParseFilter(p, s.loc)
	if err != nil {
		return nil, err
	}
	admissions, roomList, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(admissions, RoomTypes(roomList), f), nil
}
