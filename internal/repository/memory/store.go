// Package memory provides an in-memory implementation of the ward store used for
// tests and ephemeral environments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"vetward/internal/domain"
)

var _ domain.Store = (*Store)(nil)

type state struct {
	rooms      map[string]domain.Room
	admissions map[string]domain.Admission
	owners     map[string]string // treatment id -> admission id
	audit      []domain.AuditEntry
}

func newState() *state {
	return &state{
		rooms:      make(map[string]domain.Room),
		admissions: make(map[string]domain.Admission),
		owners:     make(map[string]string),
	}
}

func (s *state) clone() *state {
	out := newState()
	for k, v := range s.rooms {
		out.rooms[k] = v
	}
	for k, v := range s.admissions {
		out.admissions[k] = v.Clone()
	}
	for k, v := range s.owners {
		out.owners[k] = v
	}
	out.audit = append(out.audit, s.audit...)
	return out
}

// Store keeps all ward state in maps guarded by one mutex. Transactions run on a
// copy of the state which replaces the live state only when fn succeeds.
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

func New() *Store {
	return &Store{state: newState(), now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) InTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(&view{store: s, tx: working}); err != nil {
		return err
	}
	s.state = working
	return nil
}

func (s *Store) Rooms() domain.RoomStore           { return &roomStore{v: &view{store: s}} }
func (s *Store) Admissions() domain.AdmissionStore { return &admissionStore{v: &view{store: s}} }
func (s *Store) Audit() domain.AuditStore          { return &auditStore{v: &view{store: s}} }

// view runs operations either inside a transaction (tx set, lock already held)
// or directly on the live state under the store lock.
type view struct {
	store *Store
	tx    *state
}

func (v *view) do(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.state)
}

func (v *view) Rooms() domain.RoomStore           { return &roomStore{v: v} }
func (v *view) Admissions() domain.AdmissionStore { return &admissionStore{v: v} }
func (v *view) Audit() domain.AuditStore          { return &auditStore{v: v} }

type roomStore struct{ v *view }

func (r *roomStore) List(_ context.Context) ([]domain.Room, error) {
	var out []domain.Room
	err := r.v.do(func(st *state) error {
		out = make([]domain.Room, 0, len(st.rooms))
		for _, room := range st.rooms {
			out = append(out, room)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, err
}

func (r *roomStore) GetByNumber(_ context.Context, number string) (*domain.Room, error) {
	var out *domain.Room
	err := r.v.do(func(st *state) error {
		room, ok := st.rooms[number]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrRoomNotFound, number)
		}
		out = &room
		return nil
	})
	return out, err
}

func (r *roomStore) Create(_ context.Context, room *domain.Room) error {
	return r.v.do(func(st *state) error {
		if _, exists := st.rooms[room.Number]; exists {
			return fmt.Errorf("%w: room number %s already exists", domain.ErrValidation, room.Number)
		}
		now := r.v.store.now()
		if room.ID == "" {
			room.ID = uuid.NewString()
		}
		if room.CreatedAt.IsZero() {
			room.CreatedAt = now
		}
		room.UpdatedAt = now
		st.rooms[room.Number] = *room
		return nil
	})
}

func (r *roomStore) UpdateRate(_ context.Context, number string, rate decimal.Decimal) error {
	return r.v.do(func(st *state) error {
		room, ok := st.rooms[number]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrRoomNotFound, number)
		}
		room.DailyRate = rate
		room.UpdatedAt = r.v.store.now()
		st.rooms[number] = room
		return nil
	})
}

func (r *roomStore) Reserve(_ context.Context, number string) (decimal.Decimal, error) {
	var rate decimal.Decimal
	err := r.v.do(func(st *state) error {
		room, ok := st.rooms[number]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrRoomNotFound, number)
		}
		if room.Occupied >= room.Capacity {
			return fmt.Errorf("%w: %s (%d/%d)", domain.ErrRoomFull, number, room.Occupied, room.Capacity)
		}
		room.Occupied++
		room.UpdatedAt = r.v.store.now()
		st.rooms[number] = room
		rate = room.DailyRate
		return nil
	})
	return rate, err
}

func (r *roomStore) Release(_ context.Context, number string) (bool, error) {
	var underflow bool
	err := r.v.do(func(st *state) error {
		room, ok := st.rooms[number]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrRoomNotFound, number)
		}
		if room.Occupied == 0 {
			underflow = true
			return nil
		}
		room.Occupied--
		room.UpdatedAt = r.v.store.now()
		st.rooms[number] = room
		return nil
	})
	return underflow, err
}

type admissionStore struct{ v *view }

func (a *admissionStore) Create(_ context.Context, adm *domain.Admission) error {
	return a.v.do(func(st *state) error {
		if adm.ID == "" {
			adm.ID = uuid.NewString()
		}
		if _, exists := st.admissions[adm.ID]; exists {
			return fmt.Errorf("%w: admission %s already exists", domain.ErrValidation, adm.ID)
		}
		now := a.v.store.now()
		if adm.CreatedAt.IsZero() {
			adm.CreatedAt = now
		}
		adm.UpdatedAt = now
		st.put(adm.Clone())
		return nil
	})
}

func (a *admissionStore) GetByID(_ context.Context, id string) (*domain.Admission, error) {
	var out *domain.Admission
	err := a.v.do(func(st *state) error {
		adm, ok := st.admissions[id]
		if !ok {
			return fmt.Errorf("%w: admission %s", domain.ErrNotFound, id)
		}
		c := adm.Clone()
		out = &c
		return nil
	})
	return out, err
}

func (a *admissionStore) Save(_ context.Context, adm *domain.Admission) error {
	return a.v.do(func(st *state) error {
		prev, ok := st.admissions[adm.ID]
		if !ok {
			return fmt.Errorf("%w: admission %s", domain.ErrNotFound, adm.ID)
		}
		for _, t := range prev.Treatments {
			delete(st.owners, t.ID)
		}
		adm.UpdatedAt = a.v.store.now()
		st.put(adm.Clone())
		return nil
	})
}

func (a *admissionStore) List(_ context.Context) ([]domain.Admission, error) {
	var out []domain.Admission
	err := a.v.do(func(st *state) error {
		out = make([]domain.Admission, 0, len(st.admissions))
		for _, adm := range st.admissions {
			out = append(out, adm.Clone())
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AdmittedAt.Equal(out[j].AdmittedAt) {
			return out[i].AdmittedAt.After(out[j].AdmittedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (a *admissionStore) AdmissionIDForTreatment(_ context.Context, treatmentID string) (string, error) {
	var id string
	err := a.v.do(func(st *state) error {
		owner, ok := st.owners[treatmentID]
		if !ok {
			return fmt.Errorf("%w: treatment %s", domain.ErrNotFound, treatmentID)
		}
		id = owner
		return nil
	})
	return id, err
}

func (st *state) put(adm domain.Admission) {
	st.admissions[adm.ID] = adm
	for _, t := range adm.Treatments {
		st.owners[t.ID] = adm.ID
	}
}

type auditStore struct{ v *view }

func (a *auditStore) Append(_ context.Context, entry *domain.AuditEntry) error {
	return a.v.do(func(st *state) error {
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = a.v.store.now()
		}
		st.audit = append(st.audit, *entry)
		return nil
	})
}

func (a *auditStore) ListForEntity(_ context.Context, entity, entityID string) ([]domain.AuditEntry, error) {
	var out []domain.AuditEntry
	err := a.v.do(func(st *state) error {
		for _, e := range st.audit {
			if e.Entity == entity && e.EntityID == entityID {
				out = append(out, e)
			}
		}
		return nil
	})
	return out, err
}
