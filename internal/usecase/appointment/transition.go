package appointment

import (
	"context"
	"time"

	"github.com/kiryafn/vet-clinic-crm/internal/audit"
	domain "github.com/kiryafn/vet-clinic-crm/internal/domain/appointment"
	"github.com/kiryafn/vet-clinic-crm/internal/models"
)

// transition loads the appointment, applies action under the doctor row lock
// and persists the result. The re-read inside the transaction makes two
// racing transitions of the same appointment resolve to one success.
func transition(
	ctx context.Context,
	repo domain.Repository,
	engine *SlotEngine,
	dispatcher *audit.Dispatcher,
	appointmentID uint,
	action func(*models.Appointment, time.Time) error,
	event string,
) (*models.Appointment, error) {

	current, err := repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	var updated *models.Appointment
	err = repo.Transaction(ctx, func(tx domain.Repository) error {
		if err := tx.LockDoctor(ctx, current.DoctorID); err != nil {
			return err
		}

		ap, err := tx.GetAppointment(ctx, appointmentID)
		if err != nil {
			return err
		}

		if err := action(ap, engine.Now()); err != nil {
			return err
		}

		if err := tx.UpdateAppointment(ctx, ap); err != nil {
			return err
		}
		updated = ap
		return nil
	})
	if err != nil {
		return nil, err
	}

	engine.metrics.ObserveTransition(updated.Status)
	dispatcher.Dispatch(audit.Event{
		Action:   event,
		Entity:   "appointment",
		EntityID: &updated.ID,
		Metadata: map[string]any{"doctor_id": updated.DoctorID},
	})

	return updated, nil
}
