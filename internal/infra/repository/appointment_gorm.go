package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/kiryafn/vet-clinic-crm/internal/domain/appointment"
	"github.com/kiryafn/vet-clinic-crm/internal/httperr"
	"github.com/kiryafn/vet-clinic-crm/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

func (r *AppointmentGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AppointmentGormRepository{db: tx})
	})
}

// --------------------------------------------------
// Doctor / Client / Pet
// --------------------------------------------------

func (r *AppointmentGormRepository) GetDoctor(
	ctx context.Context,
	id uint,
) (*models.Doctor, error) {

	var doctor models.Doctor
	if err := r.db.WithContext(ctx).First(&doctor, id).Error; err != nil {
		return nil, notFound(err, domain.ErrDoctorNotFound, "get doctor")
	}
	return &doctor, nil
}

func (r *AppointmentGormRepository) LockDoctor(
	ctx context.Context,
	id uint,
) error {

	var doctor models.Doctor
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&doctor, id).Error; err != nil {
		return notFound(err, domain.ErrDoctorNotFound, "lock doctor")
	}
	return nil
}

func (r *AppointmentGormRepository) GetClient(
	ctx context.Context,
	id uint,
) (*models.Client, error) {

	var client models.Client
	if err := r.db.WithContext(ctx).First(&client, id).Error; err != nil {
		return nil, notFound(err, domain.ErrClientNotFound, "get client")
	}
	return &client, nil
}

func (r *AppointmentGormRepository) GetPetForClient(
	ctx context.Context,
	petID uint,
	clientID uint,
) (*models.Pet, error) {

	var pet models.Pet
	if err := r.db.WithContext(ctx).
		Where("id = ? AND client_id = ?", petID, clientID).
		First(&pet).Error; err != nil {
		return nil, notFound(err, domain.ErrPetNotFound, "get pet")
	}
	return &pet, nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	// Omit associations so a partially filled Doctor/Client/Pet is never upserted.
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(ap).Error
	if err == nil {
		return nil
	}
	if isSlotConstraint(err) {
		return domain.ErrSlotConflict
	}
	return fmt.Errorf("create appointment: %w", err)
}

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.withRelations(ctx).First(&ap, id).Error; err != nil {
		return nil, notFound(err, domain.ErrAppointmentNotFound, "get appointment")
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(ap).Error
	if err == nil {
		return nil
	}
	if isSlotConstraint(err) {
		return domain.ErrSlotConflict
	}
	return fmt.Errorf("update appointment: %w", err)
}

// UpdateAppointmentDetails writes only the patchable columns, so a concurrent
// status change is never overwritten.
func (r *AppointmentGormRepository) UpdateAppointmentDetails(
	ctx context.Context,
	ap *models.Appointment,
) error {
	err := r.db.WithContext(ctx).
		Model(ap).
		Select("reason", "doctor_notes", "updated_at").
		Updates(ap).Error
	if err != nil {
		return fmt.Errorf("update appointment details: %w", err)
	}
	return nil
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *AppointmentGormRepository) ListActiveAppointments(
	ctx context.Context,
	doctorID uint,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Select("id", "doctor_id", "date_time", "status").
		Where(
			"doctor_id = ? AND status <> ? AND date_time >= ? AND date_time < ?",
			doctorID, string(domain.StatusCancelled), from, to,
		).
		Order("date_time ASC").
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("list active appointments: %w", err)
	}

	return apps, nil
}

// --------------------------------------------------
// Read model
// --------------------------------------------------

func (r *AppointmentGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	doctorID uint,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.withRelations(ctx).
		Where(
			"doctor_id = ? AND date_time >= ? AND date_time < ?",
			doctorID, from, to,
		).
		Order("date_time ASC").
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("list appointments for period: %w", err)
	}

	return apps, nil
}

func (r *AppointmentGormRepository) ListAppointmentsForClient(
	ctx context.Context,
	clientID uint,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.withRelations(ctx).
		Where("client_id = ?", clientID).
		Order("date_time ASC").
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("list appointments for client: %w", err)
	}

	return apps, nil
}

func (r *AppointmentGormRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Doctor").
		Preload("Client").
		Preload("Pet")
}

func notFound(err error, domainErr error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isSlotConstraint covers the partial unique index (translated by gorm) and
// the postgres exclusion constraint on overlapping ranges.
func isSlotConstraint(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		httperr.IsUniqueViolation(err) ||
		httperr.IsExclusionConflict(err)
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
