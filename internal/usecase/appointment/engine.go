package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	domain "github.com/kiryafn/vet-clinic-crm/internal/domain/appointment"
	"github.com/kiryafn/vet-clinic-crm/internal/infra/lock"
	"github.com/kiryafn/vet-clinic-crm/internal/metrics"
	"github.com/kiryafn/vet-clinic-crm/internal/models"
	"github.com/kiryafn/vet-clinic-crm/internal/timezone"
)

// SlotEngine answers availability questions for a doctor and performs the
// conflict-checked insert. All instants are handled as naive UTC.
type SlotEngine struct {
	repo    domain.Repository
	policy  domain.SlotPolicy
	now     func() time.Time
	locker  lock.Locker
	metrics *metrics.SchedulingMetrics
	logger  zerolog.Logger
}

type EngineOption func(*SlotEngine)

func WithClock(now func() time.Time) EngineOption {
	return func(e *SlotEngine) { e.now = now }
}

func WithLocker(l lock.Locker) EngineOption {
	return func(e *SlotEngine) { e.locker = l }
}

func WithMetrics(m *metrics.SchedulingMetrics) EngineOption {
	return func(e *SlotEngine) { e.metrics = m }
}

func WithLogger(l zerolog.Logger) EngineOption {
	return func(e *SlotEngine) { e.logger = l }
}

func NewSlotEngine(
	repo domain.Repository,
	policy domain.SlotPolicy,
	opts ...EngineOption,
) *SlotEngine {
	if policy.Duration <= 0 {
		policy = domain.DefaultPolicy()
	}

	e := &SlotEngine{
		repo:   repo,
		policy: policy,
		now:    timezone.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.locker == nil {
		e.locker = lock.NewLocal(3 * time.Second)
	}
	return e
}

// Now is the engine clock, normalized.
func (e *SlotEngine) Now() time.Time {
	return timezone.NaiveUTC(e.now())
}

// IsAvailable reports whether [start, start+Duration) overlaps no planned or
// completed appointment of the doctor. An unknown doctor is ErrDoctorNotFound.
func (e *SlotEngine) IsAvailable(
	ctx context.Context,
	doctorID uint,
	start time.Time,
) (bool, error) {

	if _, err := e.repo.GetDoctor(ctx, doctorID); err != nil {
		return false, err
	}

	ok, err := isFree(ctx, e.repo, e.policy, doctorID, start)
	if err != nil {
		return false, err
	}
	e.metrics.ObserveAvailability(ok)
	return ok, nil
}

func isFree(
	ctx context.Context,
	repo domain.Repository,
	policy domain.SlotPolicy,
	doctorID uint,
	start time.Time,
) (bool, error) {

	want := policy.IntervalAt(start)
	from, to := policy.SearchWindow(want.Start)

	// Rows are fetched with a closed-open window one duration wide on either
	// side; the overlap test below decides.
	apps, err := repo.ListActiveAppointments(ctx, doctorID, from, to)
	if err != nil {
		return false, err
	}

	for _, ap := range apps {
		if !domain.Status(ap.Status).Occupies() {
			continue
		}
		if want.Overlaps(policy.IntervalAt(ap.DateTime)) {
			return false, nil
		}
	}
	return true, nil
}

// GenerateDaySlots lists the free grid starts of the UTC calendar day of
// date that are strictly after now, ascending.
func (e *SlotEngine) GenerateDaySlots(
	ctx context.Context,
	doctorID uint,
	date time.Time,
) ([]time.Time, error) {

	if _, err := e.repo.GetDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	dayStart := timezone.DayStart(date)

	// A row starting up to one duration before midnight can still reach into
	// the day.
	apps, err := e.repo.ListActiveAppointments(ctx, doctorID, dayStart.Add(-e.policy.Duration), dayStart.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}
	e.metrics.ObserveSlotQuery()

	busy := make([]domain.Interval, 0, len(apps))
	for _, ap := range apps {
		if domain.Status(ap.Status).Occupies() {
			busy = append(busy, e.policy.IntervalAt(ap.DateTime))
		}
	}

	now := e.Now()
	slots := make([]time.Time, 0)
	for _, cur := range e.policy.Grid(dayStart) {
		if !cur.After(now) {
			continue
		}
		if overlapsAny(e.policy.IntervalAt(cur), busy) {
			continue
		}
		slots = append(slots, cur)
	}

	return slots, nil
}

func overlapsAny(want domain.Interval, busy []domain.Interval) bool {
	for _, b := range busy {
		if want.Overlaps(b) {
			return true
		}
	}
	return false
}

// Book inserts ap as a planned appointment if its slot is free. The check and
// the insert run under the per-doctor lock and inside one transaction holding
// a row lock on the doctor, so two concurrent bookings of overlapping slots
// cannot both succeed.
func (e *SlotEngine) Book(ctx context.Context, ap *models.Appointment) error {
	ap.DateTime = timezone.NaiveUTC(ap.DateTime)
	ap.Status = string(domain.InitialStatus())

	log := e.logger.With().
		Uint("doctor_id", ap.DoctorID).
		Time("date_time", ap.DateTime).
		Logger()

	waitStart := time.Now()
	release, err := e.locker.Acquire(ctx, ap.DoctorID)
	e.metrics.ObserveLockWait(time.Since(waitStart).Seconds())
	if err != nil {
		if errors.Is(err, lock.ErrTimeout) {
			log.Warn().Msg("booking lock wait exceeded")
			e.metrics.ObserveBooking("busy")
			return domain.ErrBookingBusy
		}
		e.metrics.ObserveBooking("error")
		return fmt.Errorf("acquire booking lock: %w", err)
	}
	defer release()

	err = e.repo.Transaction(ctx, func(tx domain.Repository) error {
		if err := tx.LockDoctor(ctx, ap.DoctorID); err != nil {
			return err
		}

		free, err := isFree(ctx, tx, e.policy, ap.DoctorID, ap.DateTime)
		if err != nil {
			return err
		}
		if !free {
			return domain.ErrSlotConflict
		}

		return tx.CreateAppointment(ctx, ap)
	})

	switch {
	case err == nil:
		e.metrics.ObserveBooking("booked")
		log.Info().Uint("appointment_id", ap.ID).Msg("appointment booked")
	case errors.Is(err, domain.ErrSlotConflict):
		e.metrics.ObserveBooking("conflict")
		log.Info().Msg("slot already taken")
	default:
		e.metrics.ObserveBooking("error")
	}
	return err
}
