package appointment

import (
	"context"
	"time"

	domain "github.com/kiryafn/vet-clinic-crm/internal/domain/appointment"
	"github.com/kiryafn/vet-clinic-crm/internal/dto"
	"github.com/kiryafn/vet-clinic-crm/internal/timezone"
)

type ListAppointmentsByDate struct {
	repo   domain.Repository
	policy domain.SlotPolicy
}

func NewListAppointmentsByDate(
	repo domain.Repository,
	policy domain.SlotPolicy,
) *ListAppointmentsByDate {
	return &ListAppointmentsByDate{
		repo:   repo,
		policy: policy,
	}
}

// Execute lists every appointment of the doctor on the UTC calendar day of
// date, any status, ascending.
func (uc *ListAppointmentsByDate) Execute(
	ctx context.Context,
	doctorID uint,
	date time.Time,
) ([]dto.AppointmentListDTO, error) {

	if _, err := uc.repo.GetDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	start := timezone.DayStart(date)
	end := start.Add(24 * time.Hour)

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
