package appointment

import (
	"context"

	"github.com/kiryafn/vet-clinic-crm/internal/audit"
	domain "github.com/kiryafn/vet-clinic-crm/internal/domain/appointment"
	"github.com/kiryafn/vet-clinic-crm/internal/models"
)

type CancelAppointment struct {
	repo   domain.Repository
	engine *SlotEngine
	audit  *audit.Dispatcher
}

func NewCancelAppointment(
	repo domain.Repository,
	engine *SlotEngine,
	audit *audit.Dispatcher,
) *CancelAppointment {
	return &CancelAppointment{
		repo:   repo,
		engine: engine,
		audit:  audit,
	}
}

// Execute moves a planned appointment to cancelled, which frees its slot.
func (uc *CancelAppointment) Execute(
	ctx context.Context,
	appointmentID uint,
) (*models.Appointment, error) {
	return transition(ctx, uc.repo, uc.engine, uc.audit, appointmentID, domain.Cancel, "appointment_cancelled")
}
