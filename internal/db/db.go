package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kiryafn/vet-clinic-crm/internal/config"
	domain "github.com/kiryafn/vet-clinic-crm/internal/domain/appointment"
	"github.com/kiryafn/vet-clinic-crm/internal/models"
	"github.com/kiryafn/vet-clinic-crm/internal/timezone"
)

// GormConfig is shared by every dialect so constraint errors are translated
// the same way in production and in tests.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return timezone.NaiveUTC(time.Now()) },
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

func NewDB(cfg *config.Config) (*gorm.DB, error) {
	gcfg := GormConfig()
	gcfg.PrepareStmt = true

	db, err := gorm.Open(postgres.Open(cfg.DBUrl), gcfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	return db, nil
}

// Migrate creates the schema. On postgres it also installs an exclusion
// constraint so overlapping active intervals of one doctor are rejected by
// the database itself.
func Migrate(db *gorm.DB, policy domain.SlotPolicy) error {
	if err := db.AutoMigrate(
		&models.Doctor{},
		&models.Client{},
		&models.Pet{},
		&models.Appointment{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return fmt.Errorf("enable btree_gist: %w", err)
	}

	if err := db.Exec(exclusionDDL(policy)).Error; err != nil {
		return fmt.Errorf("add overlap constraint: %w", err)
	}
	return nil
}

// The constraint name carries the slot length; a policy change adds a new
// constraint rather than silently reusing one built for another duration.
func exclusionDDL(policy domain.SlotPolicy) string {
	minutes := int(policy.Duration / time.Minute)
	name := fmt.Sprintf("appointments_no_overlap_%dm", minutes)

	return fmt.Sprintf(`
DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%[1]s') THEN
		ALTER TABLE appointments ADD CONSTRAINT %[1]s
			EXCLUDE USING gist (
				doctor_id WITH =,
				tsrange(date_time, date_time + interval '%[2]d minutes') WITH &&
			) WHERE (status <> 'cancelled');
	END IF;
END
$$;`, name, minutes)
}
