package appointment

import (
	"context"

	"github.com/kiryafn/vet-clinic-crm/internal/audit"
	domain "github.com/kiryafn/vet-clinic-crm/internal/domain/appointment"
	"github.com/kiryafn/vet-clinic-crm/internal/models"
)

type CompleteAppointment struct {
	repo   domain.Repository
	engine *SlotEngine
	audit  *audit.Dispatcher
}

func NewCompleteAppointment(
	repo domain.Repository,
	engine *SlotEngine,
	audit *audit.Dispatcher,
) *CompleteAppointment {
	return &CompleteAppointment{
		repo:   repo,
		engine: engine,
		audit:  audit,
	}
}

// Execute marks a planned appointment as completed. The slot stays occupied.
func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	appointmentID uint,
) (*models.Appointment, error) {
	return transition(ctx, uc.repo, uc.engine, uc.audit, appointmentID, domain.Complete, "appointment_completed")
}
