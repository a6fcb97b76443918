package appointment

import (
	"time"

	"github.com/kiryafn/vet-clinic-crm/internal/models"
	"github.com/kiryafn/vet-clinic-crm/internal/timezone"
)

// Cancel frees the slot. Complete keeps it occupied. On error ap is left
// untouched.
func Cancel(ap *models.Appointment, now time.Time) error {
	return moveTo(ap, StatusCancelled, now)
}

func Complete(ap *models.Appointment, now time.Time) error {
	return moveTo(ap, StatusCompleted, now)
}

func moveTo(ap *models.Appointment, to Status, now time.Time) error {
	if err := CanTransition(Status(ap.Status), to); err != nil {
		return err
	}

	at := timezone.NaiveUTC(now)
	switch to {
	case StatusCancelled:
		ap.CancelledAt = &at
	case StatusCompleted:
		ap.CompletedAt = &at
	}
	ap.Status = string(to)
	return nil
}
