package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/venue-app/events"
	"github.com/yeremiapane/venue-app/kds"
	"github.com/yeremiapane/venue-app/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const company = "co-1"

type fixture struct {
	db       *gorm.DB
	svc      *SessionService
	rec      *events.Recorder
	category models.Category
	table    models.Table
	customer models.Customer
	hourTier models.CategoryPrice
	oddTier  models.CategoryPrice
}

// setupTestDB menggunakan SQLite in-memory, satu database per test
func setupTestDB(t *testing.T) *gorm.DB {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.Category{},
		&models.CategoryPrice{},
		&models.Table{},
		&models.Customer{},
		&models.TableSession{},
		&models.Payment{},
	))
	return db
}

func newFixture(t *testing.T) *fixture {
	db := setupTestDB(t)
	f := &fixture{db: db, rec: events.NewRecorder(32)}

	f.category = models.Category{CompanyUUID: company, Name: "VIP", HourlyRate: decimal.NewFromInt(40000), CurrencyName: "IDR"}
	require.NoError(t, db.Create(&f.category).Error)

	f.hourTier = models.CategoryPrice{CategoryUUID: f.category.UUID, Duration: 1, Unit: models.UnitHours, Price: decimal.NewFromInt(100), FreeMins: 15, CurrencyName: "IDR"}
	require.NoError(t, db.Create(&f.hourTier).Error)
	f.oddTier = models.CategoryPrice{CategoryUUID: f.category.UUID, Duration: 30, Unit: models.UnitMinutes, Price: decimal.RequireFromString("10.55"), CurrencyName: "IDR"}
	require.NoError(t, db.Create(&f.oddTier).Error)

	f.table = models.Table{CompanyUUID: company, Name: "Table 1", CategoryUUID: f.category.UUID, Status: models.TableStatusAvailable}
	require.NoError(t, db.Create(&f.table).Error)

	f.customer = models.Customer{CompanyUUID: company, FirstName: "Budi", LastName: "Santoso", PhoneCode: "62", Phone: "0812-3456"}
	require.NoError(t, db.Create(&f.customer).Error)

	f.svc = NewSessionService(db, kds.NewHub(), f.rec)
	return f
}

func (f *fixture) setClock(now time.Time) {
	f.svc.Now = func() time.Time { return now }
}

func (f *fixture) tableStatus(t *testing.T) string {
	var table models.Table
	require.NoError(t, f.db.First(&table, "uuid = ?", f.table.UUID).Error)
	return table.Status
}

func (f *fixture) nextEvent(t *testing.T) events.SessionEvent {
	select {
	case ev := <-f.rec.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event published")
		return events.SessionEvent{}
	}
}
