package rooms

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vetward/internal/database"
	"vetward/internal/domain"
	"vetward/internal/repository"
	"vetward/internal/repository/memory"
)

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RoomFull(number string) {
	m.Called(number)
}

func (m *MockMetrics) ReleaseUnderflow(number string) {
	m.Called(number)
}

func (m *MockMetrics) SetOccupancy(roomType string, occupied, capacity int) {
	m.Called(roomType, occupied, capacity)
}

func newTestService(t *testing.T) (*Service, *memory.Store, *MockMetrics) {
	t.Helper()
	store := memory.New()
	m := &MockMetrics{}
	m.On("SetOccupancy", mock.Anything, mock.Anything, mock.Anything).Maybe()
	return NewService(store, m, zerolog.Nop()), store, m
}

func seedRoom(t *testing.T, svc *Service, number, typ string, capacity int, rate string) {
	t.Helper()
	_, err := svc.Create(context.Background(), CreateRoomRequest{
		Number:    number,
		Type:      typ,
		Capacity:  capacity,
		DailyRate: decimal.RequireFromString(rate),
	})
	require.NoError(t, err)
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateRoomRequest
	}{
		{"unknown type", CreateRoomRequest{Number: "X-1", Type: "Lounge", Capacity: 1, DailyRate: decimal.NewFromInt(10)}},
		{"zero capacity", CreateRoomRequest{Number: "X-1", Type: "ICU", Capacity: 0, DailyRate: decimal.NewFromInt(10)}},
		{"zero rate", CreateRoomRequest{Number: "X-1", Type: "ICU", Capacity: 1, DailyRate: decimal.Zero}},
		{"negative rate", CreateRoomRequest{Number: "X-1", Type: "ICU", Capacity: 1, DailyRate: decimal.NewFromInt(-5)}},
		{"blank number", CreateRoomRequest{Number: "  ", Type: "ICU", Capacity: 1, DailyRate: decimal.NewFromInt(10)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCreate_DuplicateNumber(t *testing.T) {
	svc, _, _ := newTestService(t)
	seedRoom(t, svc, "ICU-01", "ICU", 1, "250.00")

	_, err := svc.Create(context.Background(), CreateRoomRequest{
		Number: "ICU-01", Type: "General", Capacity: 2, DailyRate: decimal.NewFromInt(80),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFindAvailable_FiltersByTypeAndCapacity(t *testing.T) {
	svc, _, m := newTestService(t)
	ctx := context.Background()
	seedRoom(t, svc, "ICU-01", "ICU", 1, "250.00")
	seedRoom(t, svc, "ICU-02", "ICU", 2, "250.00")
	seedRoom(t, svc, "G-1", "General", 4, "80.00")

	_, err := svc.Reserve(ctx, "ICU-01")
	require.NoError(t, err)

	icu, err := svc.FindAvailable(ctx, "icu")
	require.NoError(t, err)
	require.Len(t, icu, 1)
	assert.Equal(t, "ICU-02", icu[0].Number)

	all, err := svc.FindAvailable(ctx, "all")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.FindAvailable(ctx, "Spa")
	assert.ErrorIs(t, err, domain.ErrValidation)

	m.AssertNotCalled(t, "RoomFull", mock.Anything)
}

func TestReserve_FullRoom(t *testing.T) {
	svc, _, m := newTestService(t)
	ctx := context.Background()
	seedRoom(t, svc, "ICU-01", "ICU", 1, "250.00")
	m.On("RoomFull", "ICU-01").Once()

	rate, err := svc.Reserve(ctx, "ICU-01")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("250")))

	_, err = svc.Reserve(ctx, "ICU-01")
	assert.ErrorIs(t, err, domain.ErrRoomFull)

	room, err := svc.Get(ctx, "ICU-01")
	require.NoError(t, err)
	assert.Equal(t, 1, room.Occupied)
	m.AssertExpectations(t)
}

func TestReserve_UnknownRoom(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Reserve(context.Background(), "NOPE")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestRelease_FloorsAtZeroAndAudits(t *testing.T) {
	svc, store, m := newTestService(t)
	ctx := context.Background()
	seedRoom(t, svc, "G-1", "General", 2, "80.00")
	m.On("ReleaseUnderflow", "G-1").Once()

	_, err := svc.Reserve(ctx, "G-1")
	require.NoError(t, err)
	require.NoError(t, svc.Release(ctx, "G-1"))
	require.NoError(t, svc.Release(ctx, "G-1"))

	room, err := svc.Get(ctx, "G-1")
	require.NoError(t, err)
	assert.Equal(t, 0, room.Occupied)

	entries, err := store.Audit().ListForEntity(ctx, domain.AuditEntityRoom, "G-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditReleaseFloor, entries[0].Action)
	m.AssertExpectations(t)
}

func TestUpdateRate_AffectsFutureReservationsAndAudits(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	seedRoom(t, svc, "G-1", "General", 2, "80.00")

	before, err := svc.Reserve(ctx, "G-1")
	require.NoError(t, err)

	room, err := svc.UpdateRate(ctx, "G-1", decimal.RequireFromString("95.5"))
	require.NoError(t, err)
	assert.Equal(t, "95.50", room.DailyRate.StringFixed(2))

	after, err := svc.Reserve(ctx, "G-1")
	require.NoError(t, err)
	assert.Equal(t, "80.00", before.StringFixed(2))
	assert.Equal(t, "95.50", after.StringFixed(2))

	entries, err := store.Audit().ListForEntity(ctx, domain.AuditEntityRoom, "G-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditRateChange, entries[0].Action)
	assert.Contains(t, entries[0].Details, "80.00 -> 95.50")

	_, err = svc.UpdateRate(ctx, "G-1", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.UpdateRate(ctx, "NOPE", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestSubCentRatesRejectedOnEveryStore(t *testing.T) {
	stores := map[string]func(t *testing.T) domain.Store{
		"memory": func(t *testing.T) domain.Store { return memory.New() },
		"gorm": func(t *testing.T) domain.Store {
			db, err := database.Connect("file:subcent_rates?mode=memory&cache=shared")
			require.NoError(t, err)
			require.NoError(t, repository.Migrate(db))
			return repository.NewStore(db)
		},
	}
	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			m := &MockMetrics{}
			m.On("SetOccupancy", mock.Anything, mock.Anything, mock.Anything).Maybe()
			svc := NewService(open(t), m, zerolog.Nop())
			ctx := context.Background()

			_, err := svc.Create(ctx, CreateRoomRequest{
				Number: "G-1", Type: "General", Capacity: 1, DailyRate: decimal.RequireFromString("0.004"),
			})
			assert.ErrorIs(t, err, domain.ErrValidation)
			_, err = svc.Get(ctx, "G-1")
			assert.ErrorIs(t, err, domain.ErrRoomNotFound)

			seedRoom(t, svc, "G-2", "General", 1, "0.01")
			_, err = svc.UpdateRate(ctx, "G-2", decimal.RequireFromString("0.004"))
			assert.ErrorIs(t, err, domain.ErrValidation)
			_, err = svc.UpdateRate(ctx, "G-2", decimal.RequireFromString("80.125"))
			assert.ErrorIs(t, err, domain.ErrValidation)

			rate, err := svc.Reserve(ctx, "G-2")
			require.NoError(t, err)
			assert.True(t, rate.IsPositive())
			assert.Equal(t, "0.01", rate.StringFixed(2))
		})
	}
}

func TestSummarizeByType(t *testing.T) {
	summary := SummarizeByType([]domain.Room{
		{Number: "ICU-01", Type: domain.RoomICU, Capacity: 1, Occupied: 1},
		{Number: "G-1", Type: domain.RoomGeneral, Capacity: 4, Occupied: 1},
		{Number: "G-2", Type: domain.RoomGeneral, Capacity: 4, Occupied: 2},
	})

	require.Len(t, summary, 4)
	assert.Equal(t, TypeOccupancy{Type: "ICU", Rooms: 1, Occupied: 1, Capacity: 1}, summary[0])
	assert.Equal(t, TypeOccupancy{Type: "General", Rooms: 2, Occupied: 3, Capacity: 8}, summary[1])
	assert.Equal(t, TypeOccupancy{Type: "Isolation"}, summary[2])
	assert.Equal(t, TypeOccupancy{Type: "Surgery"}, summary[3])
}
