package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetward/internal/domain"
)

func admissionsFixture() []domain.Admission {
	day := func(d, h int) time.Time { return time.Date(2024, 1, d, h, 0, 0, 0, time.UTC) }
	return []domain.Admission{
		{ID: "a1", Status: domain.AdmissionActive, Doctor: domain.DoctorRef{ID: "doc-1"}, RoomNumber: "ICU-01", AdmittedAt: day(24, 9)},
		{ID: "a2", Status: domain.AdmissionDischarged, Doctor: domain.DoctorRef{ID: "doc-2"}, RoomNumber: "GEN-01", AdmittedAt: day(22, 14)},
		{ID: "a3", Status: domain.AdmissionActive, Doctor: domain.DoctorRef{ID: "doc-2"}, RoomNumber: "GEN-02", AdmittedAt: day(24, 23)},
		{ID: "a4", Status: domain.AdmissionTransferred, Doctor: domain.DoctorRef{ID: "doc-1"}, RoomNumber: "ICU-01", AdmittedAt: day(20, 8)},
	}
}

var fixtureRoomTypes = map[string]domain.RoomType{
	"ICU-01": domain.RoomICU,
	"GEN-01": domain.RoomGeneral,
	"GEN-02": domain.RoomGeneral,
}

func ids(list []domain.Admission) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

func TestApplyFilters(t *testing.T) {
	tests := []struct {
		name   string
		params FilterParams
		want   []string
	}{
		{"no filter", FilterParams{}, []string{"a1", "a2", "a3", "a4"}},
		{"all is no filter", FilterParams{Status: "all", RoomType: "ALL", DoctorID: "all"}, []string{"a1", "a2", "a3", "a4"}},
		{"status", FilterParams{Status: "active"}, []string{"a1", "a3"}},
		{"doctor", FilterParams{DoctorID: "doc-1"}, []string{"a1", "a4"}},
		{"room type", FilterParams{RoomType: "General"}, []string{"a2", "a3"}},
		{"status and room type", FilterParams{Status: "Active", RoomType: "General"}, []string{"a3"}},
		{"day range includes whole last day", FilterParams{From: "2024-01-22", To: "2024-01-24"}, []string{"a1", "a2", "a3"}},
		{"rfc3339 upper bound is exclusive", FilterParams{To: "2024-01-24T09:00:00Z"}, []string{"a2", "a4"}},
		{"all predicates", FilterParams{Status: "Active", DoctorID: "doc-2", RoomType: "General", From: "2024-01-24"}, []string{"a3"}},
		{"nothing matches", FilterParams{DoctorID: "doc-9"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFilter(tt.params, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(Apply(admissionsFixture(), fixtureRoomTypes, f)))
		})
	}
}

func TestParseFilter_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		params FilterParams
	}{
		{"unknown status", FilterParams{Status: "Sleeping"}},
		{"unknown room type", FilterParams{RoomType: "Lounge"}},
		{"bad date", FilterParams{From: "24/01/2024"}},
		{"from after to", FilterParams{From: "2024-01-25", To: "2024-01-24"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFilter(tt.params, time.UTC)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestParseFilter_DaysInClinicZone(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)

	f, err := ParseFilter(FilterParams{From: "2024-01-24", To: "2024-01-24"}, loc)
	require.NoError(t, err)
	require.NotNil(t, f.From)
	require.NotNil(t, f.To)
	assert.True(t, f.From.Equal(time.Date(2024, 1, 23, 19, 0, 0, 0, time.UTC)), f.From.String())
	assert.Equal(t, 24*time.Hour, f.To.Sub(*f.From))
}
