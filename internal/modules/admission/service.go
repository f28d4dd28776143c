// Package admission runs the ward stay lifecycle: open against a room, record
// treatments, then discharge or transfer.
package admission

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"vetward/internal/domain"
	"vetward/internal/modules/billing"
	"vetward/internal/modules/treatment"
	"vetward/internal/pkg/keylock"
)

const (
	outcomeDischarged  = "discharged"
	outcomeTransferred = "transferred"
)

type Service struct {
	store     domain.Store
	rooms     RoomRegistry
	directory Directory
	events    Publisher
	metrics   Metrics
	log       zerolog.Logger

	now func() time.Time
	loc *time.Location

	admissionLocks *keylock.Locker
	roomLocks      *keylock.Locker
}

type Option func(*Service)

// WithClock replaces the service clock; admission and discharge times come from it.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the clinic time zone used for calendar-day comparisons.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

func NewService(store domain.Store, rooms RoomRegistry, directory Directory, metrics Metrics, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:          store,
		rooms:          rooms,
		directory:      directory,
		events:         nopPublisher{},
		metrics:        metrics,
		log:            log.With().Str("module", "admission").Logger(),
		now:            func() time.Time { return time.Now().UTC() },
		loc:            time.UTC,
		admissionLocks: keylock.New(),
		roomLocks:      keylock.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// observe is deferred with a pointer to the named error so it sees the final result.
func (s *Service) observe(op string, start time.Time, err *error) {
	s.metrics.Observe(op, *err == nil, time.Since(start))
}

// day truncates t to midnight of its calendar day in the clinic time zone.
func (s *Service) day(t time.Time) time.Time {
	t = t.In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}

// runningTotal is the bill the admission would have if it closed at now.
func (s *Service) runningTotal(a *domain.Admission, now time.Time) decimal.Decimal {
	return billing.Calculate(*a, now, s.loc).Calculated
}

/* ---------- OPEN ---------- */

// Resolve looks up the directory records named in req. The owner defaults to
// the pet's registered owner.
func (s *Service) Resolve(ctx context.Context, req OpenAdmissionRequest) (OpenInput, error) {
	pet, err := s.directory.GetPet(ctx, strings.TrimSpace(req.PetID))
	if err != nil {
		return OpenInput{}, err
	}
	ownerID := strings.TrimSpace(req.OwnerID)
	if ownerID == "" {
		ownerID = pet.OwnerID
	}
	if ownerID == "" {
		return OpenInput{}, fmt.Errorf("%w: owner_id is required for pet %s", domain.ErrValidation, pet.ID)
	}
	owner, err := s.directory.GetOwner(ctx, ownerID)
	if err != nil {
		return OpenInput{}, err
	}
	doctor, err := s.directory.GetDoctor(ctx, strings.TrimSpace(req.DoctorID))
	if err != nil {
		return OpenInput{}, err
	}
	return OpenInput{
		Pet:                pet.Ref(),
		Owner:              owner.Ref(),
		Doctor:             doctor.Ref(),
		RoomNumber:         req.RoomNumber,
		Reason:             req.Reason,
		EstimatedDischarge: req.EstimatedDischarge,
		Notes:              req.Notes,
	}, nil
}

// Open admits a pet into a room. The room slot is reserved in the same
// transaction that stores the admission, so a failed open leaves occupancy as it was.
func (s *Service) Open(ctx context.Context, in OpenInput) (_ *domain.Admission, err error) {
	defer s.observe("admission.open", time.Now(), &err)

	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", domain.ErrValidation)
	}
	if strings.TrimSpace(in.Pet.ID) == "" || strings.TrimSpace(in.Pet.Name) == "" {
		return nil, fmt.Errorf("%w: pet is required", domain.ErrValidation)
	}
	number := strings.TrimSpace(in.RoomNumber)
	if number == "" {
		return nil, fmt.Errorf("%w: room number is required", domain.ErrValidation)
	}
	now := s.now()
	if in.EstimatedDischarge != nil && s.day(*in.EstimatedDischarge).Before(s.day(now)) {
		return nil, fmt.Errorf("%w: estimated discharge is in the past", domain.ErrValidation)
	}

	unlock := s.roomLocks.Lock(number)
	defer unlock()

	var (
		a        *domain.Admission
		roomType domain.RoomType
	)
	err = s.store.InTx(ctx, func(tx domain.Tx) error {
		rate, err := s.rooms.ReserveIn(ctx, tx, number)
		if err != nil {
			return err
		}
		room, err := tx.Rooms().GetByNumber(ctx, number)
		if err != nil {
			return err
		}
		roomType = room.Type

		a = &domain.Admission{
			ID:                 uuid.NewString(),
			Pet:                in.Pet,
			Owner:              in.Owner,
			Doctor:             in.Doctor,
			RoomNumber:         number,
			AdmittedAt:         now,
			Reason:             reason,
			Status:             domain.AdmissionActive,
			EstimatedDischarge: in.EstimatedDischarge,
			TotalBill:          decimal.Zero,
			DailyRate:          rate,
			Treatments:         []domain.Treatment{},
			Notes:              strings.TrimSpace(in.Notes),
		}
		return tx.Admissions().Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("admission_id", a.ID).
		Str("room", number).
		Str("pet", a.Pet.Name).
		Str("daily_rate", a.DailyRate.StringFixed(2)).
		Msg("admission opened")
	s.metrics.AdmissionOpened(string(roomType))
	s.publish(domain.EventAdmissionOpened, a.ID, number, now, a)
	s.afterOccupancyChange(ctx, now)
	return a, nil
}

/* ---------- TREATMENTS ---------- */

// mutateActive loads an Active admission under its lock, applies fn and saves
// the result with a recomputed running total.
func (s *Service) mutateActive(ctx context.Context, admissionID string, fn func(a *domain.Admission, now time.Time) error) (*domain.Admission, error) {
	unlock := s.admissionLocks.Lock(admissionID)
	defer unlock()

	var out *domain.Admission
	err := s.store.InTx(ctx, func(tx domain.Tx) error {
		a, err := tx.Admissions().GetByID(ctx, admissionID)
		if err != nil {
			return err
		}
		if !a.IsActive() {
			return fmt.Errorf("%w: admission %s is %s", domain.ErrAdmissionClosed, a.ID, a.Status)
		}
		now := s.now()
		if err := fn(a, now); err != nil {
			return err
		}
		a.TotalBill = s.runningTotal(a, now)
		if err := tx.Admissions().Save(ctx, a); err != nil {
			return err
		}
		out = a
		return nil
	})
	return out, err
}

func (s *Service) AddTreatment(ctx context.Context, admissionID string, in treatment.Input) (_ *domain.Treatment, err error) {
	defer s.observe("admission.add_treatment", time.Now(), &err)

	var added domain.Treatment
	a, err := s.mutateActive(ctx, admissionID, func(a *domain.Admission, now time.Time) error {
		t, err := treatment.New(in, a.ID, a.NextTreatmentSeq(), now)
		if err != nil {
			return err
		}
		a.Treatments = append(a.Treatments, t)
		added = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("admission_id", a.ID).
		Str("treatment_id", added.ID).
		Str("type", string(added.Type)).
		Str("cost", added.Cost.StringFixed(2)).
		Msg("treatment added")
	s.publish(domain.EventTreatmentAdded, a.ID, a.RoomNumber, added.CreatedAt, added)
	return &added, nil
}

func (s *Service) UpdateTreatmentStatus(ctx context.Context, treatmentID, status string) (_ *domain.Treatment, err error) {
	defer s.observe("admission.update_treatment", time.Now(), &err)

	next, err := domain.ParseTreatmentStatus(status)
	if err != nil {
		return nil, err
	}
	admissionID, err := s.store.Admissions().AdmissionIDForTreatment(ctx, treatmentID)
	if err != nil {
		return nil, err
	}

	var updated domain.Treatment
	a, err := s.mutateActive(ctx, admissionID, func(a *domain.Admission, now time.Time) error {
		i := a.FindTreatment(treatmentID)
		if i < 0 {
			return fmt.Errorf("%w: treatment %s", domain.ErrNotFound, treatmentID)
		}
		if err := treatment.Transition(a.Treatments[i].Status, next); err != nil {
			return err
		}
		a.Treatments[i].Status = next
		a.Treatments[i].UpdatedAt = now
		updated = a.Treatments[i]
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("admission_id", a.ID).Str("treatment_id", treatmentID).Str("status", string(next)).Msg("treatment status changed")
	s.publish(domain.EventTreatmentUpdated, a.ID, a.RoomNumber, updated.UpdatedAt, updated)
	return &updated, nil
}

func (s *Service) RemoveTreatment(ctx context.Context, treatmentID string) (err error) {
	defer s.observe("admission.remove_treatment", time.Now(), &err)

	admissionID, err := s.store.Admissions().AdmissionIDForTreatment(ctx, treatmentID)
	if err != nil {
		return err
	}

	a, err := s.mutateActive(ctx, admissionID, func(a *domain.Admission, _ time.Time) error {
		i := a.FindTreatment(treatmentID)
		if i < 0 {
			return fmt.Errorf("%w: treatment %s", domain.ErrNotFound, treatmentID)
		}
		if err := treatment.CanRemove(a.Treatments[i]); err != nil {
			return err
		}
		a.Treatments = slices.Delete(a.Treatments, i, i+1)
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("admission_id", a.ID).Str("treatment_id", treatmentID).Msg("treatment removed")
	s.publish(domain.EventTreatmentRemoved, a.ID, a.RoomNumber, a.UpdatedAt, map[string]string{"treatment_id": treatmentID})
	return nil
}

// Timeline yields the admission's treatments newest first.
func (s *Service) Timeline(ctx context.Context, admissionID string) (iter.Seq[domain.Treatment], error) {
	a, err := s.store.Admissions().GetByID(ctx, admissionID)
	if err != nil {
		return nil, err
	}
	return treatment.SortedByTime(a.Treatments), nil
}

/* ---------- DISCHARGE / TRANSFER ---------- */

func (s *Service) Discharge(ctx context.Context, admissionID string, in DischargeInput) (_ *domain.Admission, err error) {
	defer s.observe("admission.discharge", time.Now(), &err)

	if in.FinalBill != nil {
		if in.FinalBill.IsNegative() {
			return nil, fmt.Errorf("%w: final bill must not be negative", domain.ErrValidation)
		}
		if err := domain.CheckCents("final bill", *in.FinalBill); err != nil {
			return nil, err
		}
	}
	payment, err := domain.ParsePaymentStatus(in.PaymentStatus)
	if err != nil {
		return nil, err
	}

	unlockAdmission := s.admissionLocks.Lock(admissionID)
	defer unlockAdmission()

	current, err := s.store.Admissions().GetByID(ctx, admissionID)
	if err != nil {
		return nil, err
	}
	unlockRoom := s.roomLocks.Lock(current.RoomNumber)
	defer unlockRoom()

	var (
		a         *domain.Admission
		breakdown billing.Breakdown
	)
	err = s.store.InTx(ctx, func(tx domain.Tx) error {
		var err error
		a, err = tx.Admissions().GetByID(ctx, admissionID)
		if err != nil {
			return err
		}
		if !a.IsActive() {
			return fmt.Errorf("%w: admission %s is %s", domain.ErrAdmissionClosed, a.ID, a.Status)
		}

		now := s.now()
		at := now
		if in.DischargedAt != nil && !in.DischargedAt.IsZero() {
			at = *in.DischargedAt
		}
		if s.day(at).Before(s.day(a.AdmittedAt)) {
			return fmt.Errorf("%w: discharge date is before admission date", domain.ErrValidation)
		}
		if s.day(at).After(s.day(now)) {
			return fmt.Errorf("%w: discharge date is in the future", domain.ErrValidation)
		}

		breakdown = billing.Calculate(*a, at, s.loc)
		final, overridden := billing.FinalAmount(breakdown, in.FinalBill)

		a.Discharge = &domain.DischargeRecord{
			DischargedAt: at,
			Notes:        strings.TrimSpace(in.Notes),
			FollowUp: domain.FollowUp{
				Required:     in.FollowUp.Required,
				Date:         in.FollowUp.Date,
				Instructions: strings.TrimSpace(in.FollowUp.Instructions),
			},
			MedicationsDispensed: in.MedicationsDispensed,
			StayDays:             breakdown.StayDays,
			RoomCharges:          breakdown.RoomCharges,
			TreatmentCharges:     breakdown.TreatmentCharges,
			CalculatedBill:       breakdown.Calculated,
			FinalBill:            final,
			Overridden:           overridden,
			PaymentStatus:        payment,
			PaymentMethod:        strings.TrimSpace(in.PaymentMethod),
		}
		a.Status = domain.AdmissionDischarged
		a.ActualDischarge = &at
		a.TotalBill = final

		if err := tx.Admissions().Save(ctx, a); err != nil {
			return err
		}
		if err := s.rooms.ReleaseIn(ctx, tx, a.RoomNumber); err != nil {
			return err
		}
		if overridden {
			return tx.Audit().Append(ctx, &domain.AuditEntry{
				Action:   domain.AuditBillOverride,
				Entity:   domain.AuditEntityAdmission,
				EntityID: a.ID,
				Details: fmt.Sprintf("calculated=%s final=%s",
					breakdown.Calculated.StringFixed(2), final.StringFixed(2)),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	evt := s.log.Info().
		Str("admission_id", a.ID).
		Str("room", a.RoomNumber).
		Int("stay_days", breakdown.StayDays).
		Str("calculated_bill", breakdown.Calculated.StringFixed(2)).
		Str("final_bill", a.TotalBill.StringFixed(2))
	if a.Discharge.Overridden {
		evt = evt.Bool("overridden", true)
	}
	evt.Msg("admission discharged")

	s.metrics.AdmissionClosed(outcomeDischarged)
	s.metrics.Billed(a.TotalBill.InexactFloat64())
	s.publish(domain.EventAdmissionDischarged, a.ID, a.RoomNumber, *a.ActualDischarge, a)
	s.afterOccupancyChange(ctx, *a.ActualDischarge)
	return a, nil
}

// Transfer closes the admission as Transferred and opens a linked Active
// admission in another room. If the target room cannot take the pet the
// original admission is left untouched.
func (s *Service) Transfer(ctx context.Context, admissionID, roomNumber, note string) (_ *TransferResult, err error) {
	defer s.observe("admission.transfer", time.Now(), &err)

	target := strings.TrimSpace(roomNumber)
	if target == "" {
		return nil, fmt.Errorf("%w: target room is required", domain.ErrValidation)
	}

	unlockAdmission := s.admissionLocks.Lock(admissionID)
	defer unlockAdmission()

	current, err := s.store.Admissions().GetByID(ctx, admissionID)
	if err != nil {
		return nil, err
	}
	if !current.IsActive() {
		return nil, fmt.Errorf("%w: admission %s is %s", domain.ErrAdmissionClosed, current.ID, current.Status)
	}
	if current.RoomNumber == target {
		return nil, fmt.Errorf("%w: admission is already in room %s", domain.ErrValidation, target)
	}
	unlockRooms := s.roomLocks.LockAll(current.RoomNumber, target)
	defer unlockRooms()

	var from, to *domain.Admission
	err = s.store.InTx(ctx, func(tx domain.Tx) error {
		a, err := tx.Admissions().GetByID(ctx, admissionID)
		if err != nil {
			return err
		}
		if !a.IsActive() {
			return fmt.Errorf("%w: admission %s is %s", domain.ErrAdmissionClosed, a.ID, a.Status)
		}

		rate, err := s.rooms.ReserveIn(ctx, tx, target)
		if err != nil {
			return err
		}

		now := s.now()
		fromID := a.ID
		next := &domain.Admission{
			ID:                 uuid.NewString(),
			Pet:                a.Pet,
			Owner:              a.Owner,
			Doctor:             a.Doctor,
			RoomNumber:         target,
			AdmittedAt:         now,
			Reason:             a.Reason,
			Status:             domain.AdmissionActive,
			EstimatedDischarge: a.EstimatedDischarge,
			TotalBill:          decimal.Zero,
			DailyRate:          rate,
			Treatments:         []domain.Treatment{},
			Notes:              a.Notes,
			TransferredFrom:    &fromID,
		}
		if err := tx.Admissions().Create(ctx, next); err != nil {
			return err
		}

		a.Status = domain.AdmissionTransferred
		a.ActualDischarge = &now
		a.TotalBill = s.runningTotal(a, now)
		a.TransferredTo = &next.ID
		if err := tx.Admissions().Save(ctx, a); err != nil {
			return err
		}
		if err := s.rooms.ReleaseIn(ctx, tx, a.RoomNumber); err != nil {
			return err
		}

		details := fmt.Sprintf("room %s -> %s, new admission %s, billed %s",
			a.RoomNumber, target, next.ID, a.TotalBill.StringFixed(2))
		if n := strings.TrimSpace(note); n != "" {
			details += ", note: " + n
		}
		if err := tx.Audit().Append(ctx, &domain.AuditEntry{
			Action:   domain.AuditTransfer,
			Entity:   domain.AuditEntityAdmission,
			EntityID: a.ID,
			Details:  details,
		}); err != nil {
			return err
		}

		from, to = a, next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("admission_id", from.ID).
		Str("new_admission_id", to.ID).
		Str("from_room", from.RoomNumber).
		Str("to_room", to.RoomNumber).
		Str("billed", from.TotalBill.StringFixed(2)).
		Msg("admission transferred")
	s.metrics.AdmissionClosed(outcomeTransferred)
	s.publish(domain.EventAdmissionTransferred, from.ID, to.RoomNumber, to.AdmittedAt, TransferResult{From: from, To: to})
	s.afterOccupancyChange(ctx, to.AdmittedAt)
	return &TransferResult{From: from, To: to}, nil
}

/* ---------- READS ---------- */

func (s *Service) Get(ctx context.Context, id string) (*domain.Admission, error) {
	return s.store.Admissions().GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Admission, error) {
	return s.store.Admissions().List(ctx)
}

func (s *Service) AuditTrail(ctx context.Context, id string) ([]domain.AuditEntry, error) {
	if _, err := s.store.Admissions().GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Audit().ListForEntity(ctx, domain.AuditEntityAdmission, id)
}

// Invoice returns the current bill. Active admissions are priced as if they
// closed now; closed ones return the amounts fixed when they closed.
func (s *Service) Invoice(ctx context.Context, id string) (*Invoice, error) {
	a, err := s.store.Admissions().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	inv := &Invoice{AdmissionID: a.ID, Status: a.Status}
	switch {
	case a.IsActive():
		inv.Breakdown = billing.Calculate(*a, s.now(), s.loc)
		inv.FinalBill = inv.Breakdown.Calculated
		inv.Estimate = true
	case a.Discharge != nil:
		d := a.Discharge
		inv.Breakdown = billing.Breakdown{
			AdmittedAt:       a.AdmittedAt,
			BilledUntil:      d.DischargedAt,
			StayDays:         d.StayDays,
			DailyRate:        a.DailyRate,
			RoomCharges:      d.RoomCharges,
			TreatmentCharges: d.TreatmentCharges,
			Calculated:       d.CalculatedBill,
		}
		inv.FinalBill = d.FinalBill
		inv.Overridden = d.Overridden
		inv.PaymentStatus = d.PaymentStatus
		inv.PaymentMethod = d.PaymentMethod
	default:
		until := a.UpdatedAt
		if a.ActualDischarge != nil {
			until = *a.ActualDischarge
		}
		inv.Breakdown = billing.Calculate(*a, until, s.loc)
		inv.FinalBill = a.TotalBill
	}
	return inv, nil
}

/* ---------- EVENTS ---------- */

func (s *Service) publish(typ, admissionID, room string, at time.Time, data any) {
	s.events.Publish(domain.WardEvent{
		Type:        typ,
		AdmissionID: admissionID,
		RoomNumber:  room,
		At:          at,
		Data:        data,
	})
}

func (s *Service) afterOccupancyChange(ctx context.Context, at time.Time) {
	s.rooms.SyncOccupancy(ctx)
	summary, err := s.rooms.Occupancy(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("occupancy snapshot failed")
		return
	}
	s.publish(domain.EventOccupancy, "", "", at, summary)
}
