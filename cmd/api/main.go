package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kiryafn/vet-clinic-crm/internal/audit"
	"github.com/kiryafn/vet-clinic-crm/internal/config"
	dbpkg "github.com/kiryafn/vet-clinic-crm/internal/db"
	"github.com/kiryafn/vet-clinic-crm/internal/infra/lock"
	"github.com/kiryafn/vet-clinic-crm/internal/logging"
	"github.com/kiryafn/vet-clinic-crm/internal/metrics"
	"github.com/kiryafn/vet-clinic-crm/internal/routes"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vet-clinic-api",
		Short: "Vet clinic scheduling API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply schema migrations before serving")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.New(cfg.LogLevel)

			db, err := dbpkg.NewDB(cfg)
			if err != nil {
				return err
			}
			if err := dbpkg.Migrate(db, cfg.SlotPolicy()); err != nil {
				return err
			}

			logger.Info().Msg("migrations applied")
			return nil
		},
	}
}

func runServer(migrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel)

	// Database
	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return err
	}
	if migrate {
		if err := dbpkg.Migrate(db, cfg.SlotPolicy()); err != nil {
			logger.Error().Err(err).Msg("failed to migrate")
			return err
		}
	}
	logger.Info().Msg("connected to database")

	// Booking lock
	locker, closeLocker := newLocker(cfg, logger)
	defer closeLocker()

	// Audit
	auditDispatcher := audit.NewDispatcher(audit.New(db), logger, 256)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	routes.RegisterRoutes(r, routes.Deps{
		DB:       db,
		Config:   cfg,
		Logger:   logger,
		Locker:   locker,
		Metrics:  metrics.NewSchedulingMetrics(prometheus.DefaultRegisterer),
		Gatherer: prometheus.DefaultGatherer,
		Audit:    auditDispatcher,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
		return err
	}
	if err := auditDispatcher.Close(ctx); err != nil {
		logger.Warn().Err(err).Msg("audit queue not drained")
	}

	logger.Info().Msg("server stopped")
	return nil
}

// newLocker picks the Redis lock when REDIS_ADDR is set so bookings are
// serialized across instances; otherwise the in-process lock is used.
func newLocker(cfg *config.Config, logger zerolog.Logger) (lock.Locker, func()) {
	if cfg.RedisAddr == "" {
		logger.Info().Msg("booking lock: in-process")
		return lock.NewLocal(cfg.BookingLockWait), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, booking lock falls back to in-process")
		_ = client.Close()
		return lock.NewLocal(cfg.BookingLockWait), func() {}
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("booking lock: redis")
	locker := lock.NewRedis(client, lock.RedisOptions{
		TTL:  cfg.BookingLockTTL,
		Wait: cfg.BookingLockWait,
	}, logger)

	return locker, func() { _ = client.Close() }
}
