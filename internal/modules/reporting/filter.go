// Package reporting holds read-only projections over admissions and rooms.
package reporting

import (
	"fmt"
	"strings"
	"time"

	"vetward/internal/domain"
)

// Filter narrows an admission list. Zero fields add no predicate; the rest are
// combined with AND.
type Filter struct {
	Status   domain.AdmissionStatus
	DoctorID string
	RoomType domain.RoomType
	From     *time.Time // inclusive
	To       *time.Time // exclusive
}

type FilterParams struct {
	Status   string `form:"status"`
	DoctorID string `form:"doctor_id"`
	RoomType string `form:"room_type"`
	From     string `form:"from"`
	To       string `form:"to"`
}

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "all")
}

// ParseFilter validates query values. Dates are either RFC 3339 timestamps or
// plain YYYY-MM-DD days in loc; a plain "to" day includes that whole day.
func ParseFilter(p FilterParams, loc *time.Location) (Filter, error) {
	if loc == nil {
		loc = time.UTC
	}
	var f Filter

	if !isAll(p.Status) {
		st := domain.AdmissionStatus(strings.TrimSpace(p.Status))
		matched := false
		for _, known := range []domain.AdmissionStatus{domain.AdmissionActive, domain.AdmissionDischarged, domain.AdmissionTransferred} {
			if strings.EqualFold(string(known), string(st)) {
				f.Status, matched = known, true
			}
		}
		if !matched {
			return Filter{}, fmt.Errorf("%w: unknown admission status %q", domain.ErrValidation, p.Status)
		}
	}
	if !isAll(p.DoctorID) {
		f.DoctorID = strings.TrimSpace(p.DoctorID)
	}
	if !isAll(p.RoomType) {
		t, err := domain.ParseRoomType(p.RoomType)
		if err != nil {
			return Filter{}, err
		}
		f.RoomType = t
	}
	if !isAll(p.From) {
		t, _, err := parseBound(p.From, loc)
		if err != nil {
			return Filter{}, err
		}
		f.From = &t
	}
	if !isAll(p.To) {
		t, dayOnly, err := parseBound(p.To, loc)
		if err != nil {
			return Filter{}, err
		}
		if dayOnly {
			t = t.AddDate(0, 0, 1)
		}
		f.To = &t
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return Filter{}, fmt.Errorf("%w: from must be before to", domain.ErrValidation)
	}
	return f, nil
}

func parseBound(v string, loc *time.Location) (time.Time, bool, error) {
	v = strings.TrimSpace(v)
	if t, err := time.ParseInLocation("2006-01-02", v, loc); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, fmt.Errorf("%w: invalid date %q", domain.ErrValidation, v)
}

// Apply returns the admissions matching f, preserving order. roomTypes maps
// room number to type and is only consulted when f.RoomType is set.
func Apply(list []domain.Admission, roomTypes map[string]domain.RoomType, f Filter) []domain.Admission {
	var preds []func(a *domain.Admission) bool
	if f.Status != "" {
		preds = append(preds, func(a *domain.Admission) bool { return a.Status == f.Status })
	}
	if f.DoctorID != "" {
		preds = append(preds, func(a *domain.Admission) bool { return a.Doctor.ID == f.DoctorID })
	}
	if f.RoomType != "" {
		preds = append(preds, func(a *domain.Admission) bool { return roomTypes[a.RoomNumber] == f.RoomType })
	}
	if f.From != nil {
		from := *f.From
		preds = append(preds, func(a *domain.Admission) bool { return !a.AdmittedAt.Before(from) })
	}
	if f.To != nil {
		to := *f.To
		preds = append(preds, func(a *domain.Admission) bool { return a.AdmittedAt.Before(to) })
	}

	out := make([]domain.Admission, 0, len(list))
next:
	for i := range list {
		for _, p := range preds {
			if !p(&list[i]) {
				continue next
			}
		}
		out = append(out, list[i])
	}
	return out
}

// RoomTypes indexes rooms by number.
func RoomTypes(rooms []domain.Room) map[string]domain.RoomType {
	out := make(map[string]domain.RoomType, len(rooms))
	for _, r := range rooms {
		out[r.Number] = r.Type
	}
	return out
}
