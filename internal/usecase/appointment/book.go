package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/kiryafn/vet-clinic-crm/internal/audit"
	domain "github.com/kiryafn/vet-clinic-crm/internal/domain/appointment"
	"github.com/kiryafn/vet-clinic-crm/internal/models"
	"github.com/kiryafn/vet-clinic-crm/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type BookAppointmentInput struct {
	DoctorID uint
	ClientID uint
	PetID    uint
	DateTime time.Time
	Reason   string
}

// ======================================================
// USE CASE
// ======================================================

type BookAppointment struct {
	repo   domain.Repository
	engine *SlotEngine
	audit  *audit.Dispatcher
}

func NewBookAppointment(
	repo domain.Repository,
	engine *SlotEngine,
	audit *audit.Dispatcher,
) *BookAppointment {
	return &BookAppointment{
		repo:   repo,
		engine: engine,
		audit:  audit,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *BookAppointment) Execute(
	ctx context.Context,
	in BookAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// Participants
	// --------------------------------------------------
	if _, err := uc.repo.GetDoctor(ctx, in.DoctorID); err != nil {
		return nil, err
	}
	if _, err := uc.repo.GetClient(ctx, in.ClientID); err != nil {
		return nil, err
	}
	if _, err := uc.repo.GetPetForClient(ctx, in.PetID, in.ClientID); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Time
	// --------------------------------------------------
	if in.DateTime.IsZero() {
		return nil, domain.ErrInvalidDateTime
	}
	start := timezone.NaiveUTC(in.DateTime)
	if !start.After(uc.engine.Now()) {
		return nil, domain.ErrPastDateTime
	}

	// --------------------------------------------------
	// Conflict-checked insert
	// --------------------------------------------------
	ap := &models.Appointment{
		DoctorID: in.DoctorID,
		ClientID: in.ClientID,
		PetID:    in.PetID,
		DateTime: start,
		Reason:   in.Reason,
	}

	if err := uc.engine.Book(ctx, ap); err != nil {
		if errors.Is(err, domain.ErrSlotConflict) {
			uc.audit.Dispatch(audit.Event{
				ActorID:  &in.ClientID,
				Action:   "appointment_conflict",
				Entity:   "doctor",
				EntityID: &in.DoctorID,
				Metadata: map[string]any{"date_time": timezone.Format(start)},
			})
		}
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		ActorID:  &in.ClientID,
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{
			"doctor_id": in.DoctorID,
			"pet_id":    in.PetID,
			"date_time": timezone.Format(start),
		},
	})

	return uc.repo.GetAppointment(ctx, ap.ID)
}
