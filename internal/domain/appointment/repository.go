package appointment

import (
	"context"
	"time"

	"github.com/kiryafn/vet-clinic-crm/internal/models"
)

type Repository interface {
	// Transaction runs fn against a repository bound to one store transaction.
	Transaction(
		ctx context.Context,
		fn func(tx Repository) error,
	) error

	// -------- Doctor / Client / Pet (read-only) --------
	GetDoctor(
		ctx context.Context,
		id uint,
	) (*models.Doctor, error)

	// LockDoctor takes a write lock scoped to the doctor for the rest of the
	// surrounding transaction.
	LockDoctor(
		ctx context.Context,
		id uint,
	) error

	GetClient(
		ctx context.Context,
		id uint,
	) (*models.Client, error)

	GetPetForClient(
		ctx context.Context,
		petID uint,
		clientID uint,
	) (*models.Pet, error)

	// -------- Appointment (create / state change) --------
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	GetAppointment(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// UpdateAppointmentDetails persists reason and doctor notes only.
	UpdateAppointmentDetails(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Availability --------

	// ListActiveAppointments returns planned and completed appointments of the
	// doctor with date_time in [from, to), ascending, without relations.
	ListActiveAppointments(
		ctx context.Context,
		doctorID uint,
		from time.Time,
		to time.Time,
	) ([]models.Appointment, error)

	// -------- Read model --------
	ListAppointmentsForPeriod(
		ctx context.Context,
		doctorID uint,
		from time.Time,
		to time.Time,
	) ([]models.Appointment, error)

	ListAppointmentsForClient(
		ctx context.Context,
		clientID uint,
	) ([]models.Appointment, error)
}
