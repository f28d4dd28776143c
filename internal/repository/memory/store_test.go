package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetward/internal/domain"
)

func TestInTx_DiscardsWritesOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Rooms().Create(ctx, &domain.Room{Number: "ICU-01", Type: domain.RoomICU, Capacity: 1, DailyRate: decimal.NewFromInt(100)}))

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx domain.Tx) error {
		if _, err := tx.Rooms().Reserve(ctx, "ICU-01"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	room, err := s.Rooms().GetByNumber(ctx, "ICU-01")
	require.NoError(t, err)
	assert.Equal(t, 0, room.Occupied)

	_, err = s.Rooms().Reserve(ctx, "ICU-01")
	require.NoError(t, err)
	_, err = s.Rooms().Reserve(ctx, "ICU-01")
	assert.ErrorIs(t, err, domain.ErrRoomFull)
}

func TestAdmissions_ReturnCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	a := &domain.Admission{Status: domain.AdmissionActive, Treatments: []domain.Treatment{{ID: "t1", Seq: 1}}}
	require.NoError(t, s.Admissions().Create(ctx, a))

	got, err := s.Admissions().GetByID(ctx, a.ID)
	require.NoError(t, err)
	got.Treatments[0].Description = "changed"
	got.Treatments = nil

	again, err := s.Admissions().GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, again.Treatments, 1)
	assert.Empty(t, again.Treatments[0].Description)

	owner, err := s.Admissions().AdmissionIDForTreatment(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, a.ID, owner)

	again.Treatments = nil
	require.NoError(t, s.Admissions().Save(ctx, again))
	_, err = s.Admissions().AdmissionIDForTreatment(ctx, "t1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRelease_FloorsAtZero(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Rooms().Create(ctx, &domain.Room{Number: "G", Type: domain.RoomGeneral, Capacity: 2, DailyRate: decimal.NewFromInt(50)}))

	underflow, err := s.Rooms().Release(ctx, "G")
	require.NoError(t, err)
	assert.True(t, underflow)

	room, err := s.Rooms().GetByNumber(ctx, "G")
	require.NoError(t, err)
	assert.Equal(t, 0, room.Occupied)
}
