package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kiryafn/vet-clinic-crm/internal/audit"
	"github.com/kiryafn/vet-clinic-crm/internal/config"
	"github.com/kiryafn/vet-clinic-crm/internal/handlers"
	"github.com/kiryafn/vet-clinic-crm/internal/infra/lock"
	infraRepo "github.com/kiryafn/vet-clinic-crm/internal/infra/repository"
	"github.com/kiryafn/vet-clinic-crm/internal/metrics"
	"github.com/kiryafn/vet-clinic-crm/internal/middleware"
	ucAppointment "github.com/kiryafn/vet-clinic-crm/internal/usecase/appointment"
)

type Deps struct {
	DB     *gorm.DB
	Config *config.Config
	Logger zerolog.Logger

	Locker   lock.Locker
	Metrics  *metrics.SchedulingMetrics
	Gatherer prometheus.Gatherer
	Audit    *audit.Dispatcher

	// Clock overrides the engine clock; nil means wall clock.
	Clock func() time.Time
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	policy := d.Config.SlotPolicy()
	appointmentRepo := infraRepo.NewAppointmentGormRepository(d.DB)

	engineOpts := []ucAppointment.EngineOption{
		ucAppointment.WithMetrics(d.Metrics),
		ucAppointment.WithLogger(d.Logger.With().Str("component", "slot_engine").Logger()),
	}
	if d.Locker != nil {
		engineOpts = append(engineOpts, ucAppointment.WithLocker(d.Locker))
	} else {
		engineOpts = append(engineOpts, ucAppointment.WithLocker(lock.NewLocal(d.Config.BookingLockWait)))
	}
	if d.Clock != nil {
		engineOpts = append(engineOpts, ucAppointment.WithClock(d.Clock))
	}
	engine := ucAppointment.NewSlotEngine(appointmentRepo, policy, engineOpts...)

	// ======================================================
	// USE CASES: APPOINTMENTS
	// ======================================================
	bookUC := ucAppointment.NewBookAppointment(appointmentRepo, engine, d.Audit)
	getUC := ucAppointment.NewGetAppointment(appointmentRepo)
	updateUC := ucAppointment.NewUpdateAppointment(appointmentRepo, d.Audit)
	cancelUC := ucAppointment.NewCancelAppointment(appointmentRepo, engine, d.Audit)
	completeUC := ucAppointment.NewCompleteAppointment(appointmentRepo, engine, d.Audit)
	listByDateUC := ucAppointment.NewListAppointmentsByDate(appointmentRepo, policy)
	listByMonthUC := ucAppointment.NewListAppointmentsByMonth(appointmentRepo, policy)
	listForClientUC := ucAppointment.NewListClientAppointments(appointmentRepo, policy)

	// ======================================================
	// HANDLERS
	// ======================================================
	slotsHandler := handlers.NewSlotsHandler(engine)
	appointmentHandler := handlers.NewAppointmentHandler(
		policy,
		bookUC,
		getUC,
		updateUC,
		cancelUC,
		completeUC,
		listByDateUC,
		listByMonthUC,
		listForClientUC,
	)

	// ======================================================
	// OPS
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		doctors := api.Group("/doctors/:id")
		{
			doctors.GET("/availability", slotsHandler.Availability)
			doctors.GET("/slots", slotsHandler.Slots)
			doctors.GET("/appointments", appointmentHandler.ListByDoctor)
		}

		api.GET("/clients/:id/appointments", appointmentHandler.ListByClient)

		api.POST("/appointments", appointmentHandler.Book)
		api.GET("/appointments/:id", appointmentHandler.Get)
		api.PATCH("/appointments/:id", appointmentHandler.Update)
		api.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)
		api.PATCH("/appointments/:id/complete", appointmentHandler.Complete)
	}
}
