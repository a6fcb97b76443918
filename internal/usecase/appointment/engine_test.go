package appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kiryafn/vet-clinic-crm/internal/db/dbtest"
	domain "github.com/kiryafn/vet-clinic-crm/internal/domain/appointment"
	"github.com/kiryafn/vet-clinic-crm/internal/infra/lock"
	"github.com/kiryafn/vet-clinic-crm/internal/infra/repository"
	"github.com/kiryafn/vet-clinic-crm/internal/models"
)

// All scenarios run on 2030-06-10 with the clock on the previous day unless a
// test moves it.
func day(hour, min int) time.Time {
	return time.Date(2030, 6, 10, hour, min, 0, 0, time.UTC)
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type env struct {
	db     *gorm.DB
	repo   *repository.AppointmentGormRepository
	engine *SlotEngine
	clock  *fixedClock
	fx     dbtest.Fixture
}

func newEnv(t *testing.T, opts ...EngineOption) *env {
	t.Helper()

	gdb := dbtest.Open(t)
	fx := dbtest.Seed(t, gdb)
	repo := repository.NewAppointmentGormRepository(gdb)
	clock := &fixedClock{now: day(0, 0).Add(-12 * time.Hour)}

	opts = append([]EngineOption{WithClock(clock.Now)}, opts...)

	return &env{
		db:     gdb,
		repo:   repo,
		engine: NewSlotEngine(repo, domain.DefaultPolicy(), opts...),
		clock:  clock,
		fx:     fx,
	}
}

func (e *env) book(t *testing.T, doctorID uint, at time.Time) (*models.Appointment, error) {
	t.Helper()
	ap := &models.Appointment{
		DoctorID: doctorID,
		ClientID: e.fx.Client.ID,
		PetID:    e.fx.Pet.ID,
		DateTime: at,
	}
	return ap, e.engine.Book(context.Background(), ap)
}

func TestGenerateDaySlots_EmptyDay(t *testing.T) {
	e := newEnv(t)

	slots, err := e.engine.GenerateDaySlots(context.Background(), e.fx.Doctor.ID, day(13, 0))
	require.NoError(t, err)

	require.Len(t, slots, 10)
	assert.Equal(t, day(9, 0), slots[0])
	assert.Equal(t, day(15, 45), slots[9])
	for i, s := range slots {
		assert.Equal(t, time.UTC, s.Location())
		assert.Equal(t, day(9, 0).Add(time.Duration(i)*45*time.Minute), s, "slot %d off grid", i)
	}
}

func TestBook_OverlapScenario(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	doctor := e.fx.Doctor.ID

	first, err := e.book(t, doctor, day(9, 0))
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.Equal(t, string(domain.StatusPlanned), first.Status)

	_, err = e.book(t, doctor, day(9, 30))
	assert.ErrorIs(t, err, domain.ErrSlotConflict)

	_, err = e.book(t, doctor, day(9, 45))
	require.NoError(t, err)

	free, err := e.engine.IsAvailable(ctx, doctor, day(9, 30))
	require.NoError(t, err)
	assert.False(t, free)

	free, err = e.engine.IsAvailable(ctx, doctor, day(10, 30))
	require.NoError(t, err)
	assert.True(t, free, "touching intervals do not overlap")

	slots, err := e.engine.GenerateDaySlots(ctx, doctor, day(0, 0))
	require.NoError(t, err)
	assert.Len(t, slots, 8)
	assert.NotContains(t, slots, day(9, 0))
	assert.NotContains(t, slots, day(9, 45))
	assert.Equal(t, day(10, 30), slots[0])

	var count int64
	require.NoError(t, e.db.Model(&models.Appointment{}).Where("doctor_id = ?", doctor).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestBook_OtherDoctorUnaffected(t *testing.T) {
	e := newEnv(t)

	_, err := e.book(t, e.fx.Doctor.ID, day(9, 0))
	require.NoError(t, err)

	_, err = e.book(t, e.fx.OtherDoctor.ID, day(9, 0))
	assert.NoError(t, err)
}

func TestBook_NormalizesToWholeSecondUTC(t *testing.T) {
	e := newEnv(t)
	msk := time.FixedZone("MSK", 3*60*60)

	ap, err := e.book(t, e.fx.Doctor.ID, time.Date(2030, 6, 10, 12, 0, 0, 500_000_000, msk))
	require.NoError(t, err)

	assert.Equal(t, day(9, 0), ap.DateTime)

	var stored models.Appointment
	require.NoError(t, e.db.First(&stored, ap.ID).Error)
	assert.True(t, day(9, 0).Equal(stored.DateTime), "stored %s", stored.DateTime)
}

func TestIsAvailable_AcrossMidnight(t *testing.T) {
	e := newEnv(t)

	_, err := e.book(t, e.fx.Doctor.ID, time.Date(2030, 6, 9, 23, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	free, err := e.engine.IsAvailable(context.Background(), e.fx.Doctor.ID, day(0, 0))
	require.NoError(t, err)
	assert.False(t, free)

	free, err = e.engine.IsAvailable(context.Background(), e.fx.Doctor.ID, day(0, 15))
	require.NoError(t, err)
	assert.True(t, free)
}

func TestCancellationFreesSlot(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cancel := NewCancelAppointment(e.repo, e.engine, nil)

	ap, err := e.book(t, e.fx.Doctor.ID, day(11, 15))
	require.NoError(t, err)

	_, err = cancel.Execute(ctx, ap.ID)
	require.NoError(t, err)

	free, err := e.engine.IsAvailable(ctx, e.fx.Doctor.ID, day(11, 15))
	require.NoError(t, err)
	assert.True(t, free)

	slots, err := e.engine.GenerateDaySlots(ctx, e.fx.Doctor.ID, day(0, 0))
	require.NoError(t, err)
	assert.Contains(t, slots, day(11, 15))

	_, err = e.book(t, e.fx.Doctor.ID, day(11, 15))
	assert.NoError(t, err, "a cancelled row must not block rebooking")
}

func TestCompletedKeepsBlocking(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	ap, err := e.book(t, e.fx.Doctor.ID, day(9, 0))
	require.NoError(t, err)

	_, err = NewCompleteAppointment(e.repo, e.engine, nil).Execute(ctx, ap.ID)
	require.NoError(t, err)

	free, err := e.engine.IsAvailable(ctx, e.fx.Doctor.ID, day(9, 0))
	require.NoError(t, err)
	assert.False(t, free)
}

func TestGenerateDaySlots_ExcludesPast(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.clock.Set(day(11, 0))
	slots, err := e.engine.GenerateDaySlots(ctx, e.fx.Doctor.ID, day(0, 0))
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, day(11, 15), slots[0])
	assert.Len(t, slots, 7)

	// A slot starting exactly now is no longer offered.
	e.clock.Set(day(11, 15))
	slots, err = e.engine.GenerateDaySlots(ctx, e.fx.Doctor.ID, day(0, 0))
	require.NoError(t, err)
	assert.Equal(t, day(12, 0), slots[0])

	e.clock.Set(day(18, 0))
	slots, err = e.engine.GenerateDaySlots(ctx, e.fx.Doctor.ID, day(0, 0))
	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.NotNil(t, slots)
}

func TestReadsAreIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.book(t, e.fx.Doctor.ID, day(12, 0))
	require.NoError(t, err)

	first, err := e.engine.GenerateDaySlots(ctx, e.fx.Doctor.ID, day(0, 0))
	require.NoError(t, err)
	second, err := e.engine.GenerateDaySlots(ctx, e.fx.Doctor.ID, day(0, 0))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	a, err := e.engine.IsAvailable(ctx, e.fx.Doctor.ID, day(12, 30))
	require.NoError(t, err)
	b, err := e.engine.IsAvailable(ctx, e.fx.Doctor.ID, day(12, 30))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBook_ConcurrentSameSlot(t *testing.T) {
	e := newEnv(t)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		booked    int
		conflicts int
		others    []error
	)

	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			ap := &models.Appointment{
				DoctorID: e.fx.Doctor.ID,
				ClientID: e.fx.Client.ID,
				PetID:    e.fx.Pet.ID,
				DateTime: day(14, 0),
			}
			err := e.engine.Book(context.Background(), ap)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				booked++
			case errors.Is(err, domain.ErrSlotConflict):
				conflicts++
			default:
				others = append(others, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Empty(t, others)
	assert.Equal(t, 1, booked)
	assert.Equal(t, workers-1, conflicts)
}

type busyLocker struct{}

func (busyLocker) Acquire(context.Context, uint) (func(), error) {
	return nil, lock.ErrTimeout
}

func TestBook_LockTimeoutIsBusy(t *testing.T) {
	e := newEnv(t, WithLocker(busyLocker{}))

	_, err := e.book(t, e.fx.Doctor.ID, day(9, 0))
	assert.ErrorIs(t, err, domain.ErrBookingBusy)

	var count int64
	require.NoError(t, e.db.Model(&models.Appointment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBook_UnknownDoctor(t *testing.T) {
	e := newEnv(t)

	_, err := e.book(t, 9999, day(9, 0))
	assert.ErrorIs(t, err, domain.ErrDoctorNotFound)
}

func TestGenerateDaySlots_OffGridBookingBlocksNeighbours(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	doctor := e.fx.Doctor.ID

	_, err := e.book(t, doctor, day(9, 10))
	require.NoError(t, err)

	slots, err := e.engine.GenerateDaySlots(ctx, doctor, day(0, 0))
	require.NoError(t, err)
	assert.NotContains(t, slots, day(9, 0))
	assert.NotContains(t, slots, day(9, 45))
	require.Len(t, slots, 8)
	assert.Equal(t, day(10, 30), slots[0])

	for _, s := range slots {
		free, err := e.engine.IsAvailable(ctx, doctor, s)
		require.NoError(t, err)
		assert.True(t, free, "listed slot %s must be available", s)
	}
}

func TestGenerateDaySlots_PreviousDayRowReachingIn(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	policy := domain.SlotPolicy{Duration: 45 * time.Minute, WorkStartHour: 0, WorkEndHour: 2}
	engine := NewSlotEngine(e.repo, policy, WithClock(e.clock.Now))

	ap := &models.Appointment{
		DoctorID: e.fx.Doctor.ID,
		ClientID: e.fx.Client.ID,
		PetID:    e.fx.Pet.ID,
		DateTime: time.Date(2030, 6, 9, 23, 30, 0, 0, time.UTC),
	}
	require.NoError(t, engine.Book(ctx, ap))

	slots, err := engine.GenerateDaySlots(ctx, e.fx.Doctor.ID, day(0, 0))
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(0, 45)}, slots)
}

func TestEngine_UnknownDoctorIsNotFound(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	free, err := e.engine.IsAvailable(ctx, 9999, day(9, 0))
	assert.ErrorIs(t, err, domain.ErrDoctorNotFound)
	assert.False(t, free)

	slots, err := e.engine.GenerateDaySlots(ctx, 9999, day(0, 0))
	assert.ErrorIs(t, err, domain.ErrDoctorNotFound)
	assert.Nil(t, slots)
}

func assertNoOverlap(t *testing.T, e *env, doctorID uint) {
	t.Helper()
	policy := domain.DefaultPolicy()

	var rows []models.Appointment
	require.NoError(t, e.db.
		Where("doctor_id = ? AND status <> ?", doctorID, string(domain.StatusCancelled)).
		Order("date_time ASC").
		Find(&rows).Error)

	for i := range rows {
		for j := i + 1; j < len(rows); j++ {
			a := policy.IntervalAt(rows[i].DateTime)
			b := policy.IntervalAt(rows[j].DateTime)
			assert.False(t, a.Overlaps(b), "rows %d (%s) and %d (%s) overlap",
				rows[i].ID, rows[i].DateTime, rows[j].ID, rows[j].DateTime)
		}
	}
}

func TestBookingSequence_NeverOverlapsAndListedSlotsAreBookable(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	doctor := e.fx.Doctor.ID
	cancel := NewCancelAppointment(e.repo, e.engine, nil)

	attempts := []time.Time{
		day(9, 10), day(9, 0), day(9, 45), day(9, 55), day(10, 5),
		day(10, 40), day(11, 15), day(11, 30), day(12, 50), day(12, 0),
		day(13, 20), day(13, 35), day(14, 0), day(14, 44), day(15, 45),
		day(16, 15), day(8, 20), day(16, 59),
	}

	for round := 0; round < 3; round++ {
		var booked []*models.Appointment
		for _, at := range attempts {
			free, err := e.engine.IsAvailable(ctx, doctor, at)
			require.NoError(t, err)

			ap, err := e.book(t, doctor, at)
			if free {
				require.NoError(t, err, "round %d: %s was reported free", round, at)
				booked = append(booked, ap)
			} else {
				require.ErrorIs(t, err, domain.ErrSlotConflict, "round %d: %s was reported busy", round, at)
			}
			assertNoOverlap(t, e, doctor)
		}

		for i, ap := range booked {
			if i%2 == round%2 {
				_, err := cancel.Execute(ctx, ap.ID)
				require.NoError(t, err)
			}
		}
		assertNoOverlap(t, e, doctor)
	}

	slots, err := e.engine.GenerateDaySlots(ctx, doctor, day(0, 0))
	require.NoError(t, err)

	listed := make(map[int64]bool, len(slots))
	for _, s := range slots {
		listed[s.Unix()] = true
	}
	for _, cur := range domain.DefaultPolicy().Grid(day(0, 0)) {
		free, err := e.engine.IsAvailable(ctx, doctor, cur)
		require.NoError(t, err)
		assert.Equal(t, free, listed[cur.Unix()], "grid start %s", cur)
	}

	for _, s := range slots {
		_, err := e.book(t, doctor, s)
		require.NoError(t, err, "listed slot %s must be bookable", s)
	}
	assertNoOverlap(t, e, doctor)

	slots, err = e.engine.GenerateDaySlots(ctx, doctor, day(0, 0))
	require.NoError(t, err)
	assert.Empty(t, slots)
}
