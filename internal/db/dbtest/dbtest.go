// Package dbtest opens throwaway in-memory databases for package tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kiryafn/vet-clinic-crm/internal/db"
	domain "github.com/kiryafn/vet-clinic-crm/internal/domain/appointment"
	"github.com/kiryafn/vet-clinic-crm/internal/models"
)

// Open returns a migrated sqlite database private to the test. A single
// connection is used so concurrent callers queue instead of hitting
// "database is locked".
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())

	cfg := db.GormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)

	gdb, err := gorm.Open(sqlite.Open(dsn), cfg)
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb, domain.DefaultPolicy()))
	return gdb
}

type Fixture struct {
	Doctor      models.Doctor
	OtherDoctor models.Doctor
	Client      models.Client
	OtherClient models.Client
	Pet         models.Pet
	OtherPet    models.Pet
}

// Seed inserts two doctors and two clients with one pet each.
func Seed(t testing.TB, gdb *gorm.DB) Fixture {
	t.Helper()

	f := Fixture{
		Doctor:      models.Doctor{FullName: "Anna Petrova", Specialization: "surgeon", Price: 1500},
		OtherDoctor: models.Doctor{FullName: "Ivan Sokolov", Specialization: "therapist"},
		Client:      models.Client{FullName: "Maria Ivanova", Email: "maria@example.com"},
		OtherClient: models.Client{FullName: "Oleg Smirnov", Email: "oleg@example.com"},
	}
	require.NoError(t, gdb.Create(&f.Doctor).Error)
	require.NoError(t, gdb.Create(&f.OtherDoctor).Error)
	require.NoError(t, gdb.Create(&f.Client).Error)
	require.NoError(t, gdb.Create(&f.OtherClient).Error)

	f.Pet = models.Pet{ClientID: f.Client.ID, Name: "Barsik", Species: "cat"}
	f.OtherPet = models.Pet{ClientID: f.OtherClient.ID, Name: "Rex", Species: "dog"}
	require.NoError(t, gdb.Create(&f.Pet).Error)
	require.NoError(t, gdb.Create(&f.OtherPet).Error)

	return f
}
