// Package treatment holds the rules for an admission's treatment log.
package treatment

import (
	"fmt"
	"iter"
	"slices"

	"vetward/internal/domain"
)

// Transition checks that a treatment may move from current to next.
// Only Scheduled treatments can change, and only to Completed or Cancelled.
func Transition(current, next domain.TreatmentStatus) error {
	if current == domain.TreatmentScheduled &&
		(next == domain.TreatmentCompleted || next == domain.TreatmentCancelled) {
		return nil
	}
	return fmt.Errorf("%w: treatment %s -> %s", domain.ErrInvalidTransition, current, next)
}

// CanRemove allows deleting a treatment only before it was performed or cancelled.
// Completed and Cancelled entries are part of the billing history.
func CanRemove(t domain.Treatment) error {
	if t.Status != domain.TreatmentScheduled {
		return fmt.Errorf("%w: cannot remove %s treatment, cancel it instead", domain.ErrInvalidTransition, t.Status)
	}
	return nil
}

// SortedByTime yields treatments newest first; entries with the same time keep
// insertion order. The input is copied, so the sequence can be ranged over again
// and is unaffected by later changes to list.
func SortedByTime(list []domain.Treatment) iter.Seq[domain.Treatment] {
	sorted := slices.Clone(list)
	slices.SortStableFunc(sorted, func(a, b domain.Treatment) int {
		if c := b.PerformedAt.Compare(a.PerformedAt); c != 0 {
			return c
		}
		return a.Seq - b.Seq
	})
	return func(yield func(domain.Treatment) bool) {
		for _, t := range sorted {
			if !yield(t) {
				return
			}
		}
	}
}
