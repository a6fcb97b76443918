package appointment

import (
	"context"

	"github.com/kiryafn/vet-clinic-crm/internal/audit"
	domain "github.com/kiryafn/vet-clinic-crm/internal/domain/appointment"
	"github.com/kiryafn/vet-clinic-crm/internal/models"
)

type UpdateAppointmentInput struct {
	AppointmentID uint
	// DoctorID identifies the doctor writing notes. Required when the patch
	// touches DoctorNotes.
	DoctorID *uint
	Patch    domain.Patch
}

type UpdateAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewUpdateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *UpdateAppointment {
	return &UpdateAppointment{
		repo:  repo,
		audit: audit,
	}
}

// Execute applies the patch to a fresh copy of the row read under the doctor
// lock. Only reason and doctor notes are written; status and the lifecycle
// timestamps stay whatever the store holds.
func (uc *UpdateAppointment) Execute(
	ctx context.Context,
	in UpdateAppointmentInput,
) (*models.Appointment, error) {

	if in.Patch.Empty() {
		return nil, domain.ErrEmptyPatch
	}

	current, err := uc.repo.GetAppointment(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	var (
		updated *models.Appointment
		changed bool
	)
	err = uc.repo.Transaction(ctx, func(tx domain.Repository) error {
		if err := tx.LockDoctor(ctx, current.DoctorID); err != nil {
			return err
		}

		ap, err := tx.GetAppointment(ctx, in.AppointmentID)
		if err != nil {
			return err
		}
		updated = ap

		if in.Patch.DoctorNotes != nil {
			if in.DoctorID == nil || *in.DoctorID != ap.DoctorID {
				return domain.ErrNotYours
			}
		}

		if changed = in.Patch.Apply(ap); !changed {
			return nil
		}
		return tx.UpdateAppointmentDetails(ctx, ap)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		uc.audit.Dispatch(audit.Event{
			ActorID:  in.DoctorID,
			Action:   "appointment_updated",
			Entity:   "appointment",
			EntityID: &updated.ID,
		})
	}

	return updated, nil
}
