package appointment

import (
	"context"

	domain "github.com/kiryafn/vet-clinic-crm/internal/domain/appointment"
	"github.com/kiryafn/vet-clinic-crm/internal/dto"
)

type ListClientAppointments struct {
	repo   domain.Repository
	policy domain.SlotPolicy
}

func NewListClientAppointments(
	repo domain.Repository,
	policy domain.SlotPolicy,
) *ListClientAppointments {
	return &ListClientAppointments{
		repo:   repo,
		policy: policy,
	}
}

func (uc *ListClientAppointments) Execute(
	ctx context.Context,
	clientID uint,
) ([]dto.AppointmentListDTO, error) {

	if _, err := uc.repo.GetClient(ctx, clientID); err != nil {
		return nil, err
	}

	appointments, err := uc.repo.ListAppointmentsForClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	return dto.ListFromAppointments(appointments, uc.policy.Duration), nil
}
