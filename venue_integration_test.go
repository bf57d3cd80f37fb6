package main

import (
	"context"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/venue-app/apiclient"
	"github.com/yeremiapane/venue-app/billing"
	"github.com/yeremiapane/venue-app/events"
	"github.com/yeremiapane/venue-app/flows"
	"github.com/yeremiapane/venue-app/kds"
	"github.com/yeremiapane/venue-app/models"
	"github.com/yeremiapane/venue-app/router"
	"github.com/yeremiapane/venue-app/services"
	"github.com/yeremiapane/venue-app/sessioncache"
	"github.com/yeremiapane/venue-app/utils"
)

const company = "co-1"

func TestMain(m *testing.M) {
	utils.InitLogger()
	utils.SetLogLevel("warn")
	os.Exit(m.Run())
}

type toasts struct {
	mu      sync.Mutex
	success []string
	errors  []string
}

func (n *toasts) NotifySuccess(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.success = append(n.success, msg)
}

func (n *toasts) NotifyError(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

func (n *toasts) Errors() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.errors...)
}

// setupTestDB -> SQLite in-memory dengan migrasi dan seed satu meja
func setupTestDB(t *testing.T) (*gorm.DB, models.Table, models.CategoryPrice) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	autoMigrate(db)

	category := models.Category{CompanyUUID: company, Name: "VIP", HourlyRate: decimal.NewFromInt(40000), CurrencyName: "IDR"}
	require.NoError(t, db.Create(&category).Error)
	price := models.CategoryPrice{CategoryUUID: category.UUID, Duration: 30, Unit: models.UnitMinutes,
		Price: decimal.RequireFromString("10.55"), FreeMins: 5, CurrencyName: "IDR"}
	require.NoError(t, db.Create(&price).Error)
	table := models.Table{CompanyUUID: company, Name: "Table 1", CategoryUUID: category.UUID, Status: models.TableStatusAvailable}
	require.NoError(t, db.Create(&table).Error)
	customer := models.Customer{CompanyUUID: company, FirstName: "Budi", LastName: "Santoso", PhoneCode: "62", Phone: "0812-3456"}
	require.NoError(t, db.Create(&customer).Error)
	return db, table, price
}

// TestConsoleSessionLifecycle menguji flow utama lewat HTTP dan websocket:
// 1. Booking dialog -> BOOKED
// 2. Start -> ACTIVE, countdown berjalan
// 3. Recharge dengan kartu -> waktu bertambah
// 4. Stop -> meja kosong
func TestConsoleSessionLifecycle(t *testing.T) {
	db, table, price := setupTestDB(t)

	recorder := events.NewRecorder(10)
	hub := kds.NewHub()
	r := router.SetupRouter(db, router.Deps{
		Hub:      hub,
		Sessions: services.NewSessionService(db, hub, recorder),
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	api := apiclient.New(srv.URL, apiclient.WithTimeout(5*time.Second))
	cache := sessioncache.New()
	notes := &toasts{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go api.WatchSessions(ctx, company, cache)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	prices, err := api.TablePrices(ctx, table.UUID)
	require.NoError(t, err)
	require.Len(t, prices, 1)

	// 1. Booking
	var booked *models.TableSession
	booking := flows.NewBookingFlow(flows.BookingConfig{
		CompanyUUID: company,
		Billing:     api,
		Sessions:    api,
		Customers:   api,
		Notifier:    notes,
		SearchDelay: 10 * time.Millisecond,
		OnSuccess:   func(s *models.TableSession) { booked = s },
	})
	booking.Open(table.UUID, prices)
	require.Eventually(t, func() bool { return booking.Preview() != nil }, 2*time.Second, 10*time.Millisecond)
	preview := booking.Preview()
	assert.Equal(t, "Table 1", preview.TableName)
	assert.Equal(t, "1 hour", preview.DurationLabel)
	assert.True(t, preview.TotalAmount.Equal(decimal.NewFromInt(40000)))

	booking.Search("0812")
	require.Eventually(t, func() bool { return len(booking.Results()) == 1 }, 2*time.Second, 10*time.Millisecond)
	customer := booking.Results()[0]
	assert.Equal(t, "Budi Santoso (+628123456)", booking.Options()[0].Label)

	require.NoError(t, booking.SelectCustomer(&customer))
	require.NoError(t, booking.SetPaymentMethod(billing.PaymentCash))
	require.True(t, booking.CanSubmit())
	require.NoError(t, booking.Submit(ctx))
	booking.Wait()
	require.NotNil(t, booked)
	assert.False(t, booking.IsOpen())
	assert.Equal(t, models.SessionStatusBooked, booked.Status)

	require.Eventually(t, func() bool {
		s := cache.Session(table.UUID)
		return s != nil && s.Status == models.SessionStatusBooked
	}, 2*time.Second, 10*time.Millisecond)

	// 2. Start
	controls := flows.NewSessionControls(flows.ControlsConfig{
		CompanyUUID: company,
		Sessions:    api,
		Cache:       cache,
		Notifier:    notes,
	})
	require.NoError(t, controls.Start(ctx, table.UUID, booked))
	active := cache.Session(table.UUID)
	require.True(t, active.IsActive())
	require.NotNil(t, active.StartTime)
	firstDeadline := *active.StartTime

	// 3. Recharge
	recharge := flows.NewRechargeFlow(flows.RechargeConfig{
		CompanyUUID: company,
		Billing:     api,
		Sessions:    api,
		Cache:       cache,
		Notifier:    notes,
	})
	require.NoError(t, recharge.Open(table.UUID, active, prices))
	require.NoError(t, recharge.SelectTier(price.UUID))
	require.NoError(t, recharge.SetPaymentMethod(billing.PaymentCard))
	totals := recharge.Totals()
	assert.Equal(t, "0.844", totals.TaxAmount.String())
	assert.Equal(t, "11.394", totals.GrandTotal.String())
	assert.Equal(t, "11.39", recharge.DisplayTotals().GrandTotal)
	require.Eventually(t, recharge.CanSubmit, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, recharge.Submit(ctx))
	recharge.Wait()
	assert.False(t, recharge.IsOpen())

	require.Eventually(t, func() bool {
		s := cache.Session(table.UUID)
		return s != nil && s.StartTime != nil && !s.StartTime.Before(firstDeadline.Add(35*time.Minute))
	}, 2*time.Second, 10*time.Millisecond)

	// 4. Stop
	require.NoError(t, controls.Stop(ctx, table.UUID, cache.Session(table.UUID)))
	require.Eventually(t, func() bool { return cache.Session(table.UUID) == nil }, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, notes.Errors())

	tables, err := api.ListTables(ctx, company)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, models.TableStatusAvailable, tables[0].Status)
	assert.Nil(t, tables[0].CurrentSession)

	var payments []models.Payment
	require.NoError(t, db.Order("created_at ASC").Find(&payments).Error)
	require.Len(t, payments, 2)
	assert.True(t, payments[1].TotalAmount.Equal(decimal.RequireFromString("11.394")), payments[1].TotalAmount.String())

	seen := map[string]bool{}
	for len(seen) < 4 {
		select {
		case ev := <-recorder.Events():
			seen[ev.Type] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("missing session events, got %v", seen)
		}
	}
	assert.True(t, seen[events.TypeSessionBooked])
	assert.True(t, seen[events.TypeSessionStarted])
	assert.True(t, seen[events.TypeSessionRecharged])
	assert.True(t, seen[events.TypeSessionStopped])
}

func TestBookingConflictKeepsDialogOpen(t *testing.T) {
	db, table, _ := setupTestDB(t)
	require.NoError(t, db.Model(&models.Table{}).Where("uuid = ?", table.UUID).
		Update("status", models.TableStatusOccupied).Error)

	srv := httptest.NewServer(router.SetupRouter(db, router.Deps{}))
	defer srv.Close()
	api := apiclient.New(srv.URL)
	notes := &toasts{}

	var customer models.Customer
	require.NoError(t, db.First(&customer).Error)

	booking := flows.NewBookingFlow(flows.BookingConfig{
		CompanyUUID: company,
		Billing:     api,
		Sessions:    api,
		Customers:   api,
		Notifier:    notes,
	})
	booking.Open(table.UUID, nil)
	require.NoError(t, booking.SelectCustomer(&customer))
	require.NoError(t, booking.SetPaymentMethod(billing.PaymentCard))
	require.Eventually(t, booking.CanSubmit, 2*time.Second, 10*time.Millisecond)

	err := booking.Submit(context.Background())
	require.Error(t, err)
	booking.Wait()
	assert.True(t, booking.IsOpen())
	assert.Equal(t, []string{services.ErrTableBusy.Error()}, notes.Errors())
}
