package appointment

import (
	"context"
	"time"

	domain "github.com/kiryafn/vet-clinic-crm/internal/domain/appointment"
	"github.com/kiryafn/vet-clinic-crm/internal/dto"
)

type ListAppointmentsByMonth struct {
	repo   domain.Repository
	policy domain.SlotPolicy
}

func NewListAppointmentsByMonth(
	repo domain.Repository,
	policy domain.SlotPolicy,
) *ListAppointmentsByMonth {
	return &ListAppointmentsByMonth{
		repo:   repo,
		policy: policy,
	}
}

func (uc *ListAppointmentsByMonth) Execute(
	ctx context.Context,
	doctorID uint,
	year int,
	month int,
) ([]dto.AppointmentListDTO, error) {

	if month < 1 || month > 12 {
		return nil, domain.ErrInvalidDate
	}

	if _, err := uc.repo.GetDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	appointments, err := uc.repo.ListAppointmentsForPeriod(
		ctx,
		doctorID,
		start,
		end,
	)
	if err != nil {
		return nil, err
	}

	return dto.ListFromAppointments(appointments, uc.policy.Duration), nil
}
