package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/venue-app/billing"
	"github.com/yeremiapane/venue-app/events"
	"github.com/yeremiapane/venue-app/kds"
	"github.com/yeremiapane/venue-app/models"
	"github.com/yeremiapane/venue-app/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTableNotFound        = errors.New("table not found")
	ErrTableBusy            = errors.New("table already has an open session")
	ErrSessionNotFound      = errors.New("table session not found")
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrPriceNotFound        = errors.New("category price not found for this table")
	ErrInvalidTransition    = errors.New("session status does not allow this action")
	ErrInvalidHours         = billing.ErrInvalidHours
	ErrInvalidPaymentMethod = errors.New("payment method must be CARD, CASH or BANK_TRANSFER")
	ErrTaxMismatch          = errors.New("tax or total amount does not match the billing policy")
	ErrCompanyRequired      = errors.New("companyUuid is required")
	publishTimeout          = 5 * time.Second
)

type BookInput struct {
	CompanyUUID   string
	TableUUID     string
	CustomerUUID  string
	PaymentMethod string
	Hours         float64
}

type RechargeInput struct {
	CompanyUUID       string
	TableSessionUUID  string
	CategoryPriceUUID string
	PaymentMethod     string
	TaxRate           decimal.Decimal
	TaxAmount         decimal.Decimal
	TotalAmount       decimal.Decimal
}

// SessionService menangani lifecycle sesi meja: book -> start -> recharge -> stop
type SessionService struct {
	db        *gorm.DB
	hub       *kds.Hub
	publisher events.Publisher
	Now       func() time.Time
}

func NewSessionService(db *gorm.DB, hub *kds.Hub, publisher events.Publisher) *SessionService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &SessionService{db: db, hub: hub, publisher: publisher, Now: time.Now}
}

// Book membuat sesi BOOKED dan mencatat pembayaran booking
func (s *SessionService) Book(ctx context.Context, in BookInput) (*models.TableSession, error) {
	if in.CompanyUUID == "" {
		return nil, ErrCompanyRequired
	}
	if !billing.ValidHours(in.Hours) {
		return nil, ErrInvalidHours
	}
	if !billing.ValidPaymentMethod(in.PaymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}

	var session models.TableSession
	var total decimal.Decimal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table, err := findTable(tx, in.CompanyUUID, in.TableUUID)
		if err != nil {
			return err
		}

		var customer models.Customer
		if err := tx.Where("uuid = ? AND company_uuid = ?", in.CustomerUUID, in.CompanyUUID).First(&customer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return err
		}

		// Klaim meja: hanya berhasil kalau masih available
		res := tx.Model(&models.Table{}).
			Where("uuid = ? AND status = ?", table.UUID, models.TableStatusAvailable).
			Update("status", models.TableStatusBooked)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTableBusy
		}

		session = models.TableSession{
			TableUUID:    table.UUID,
			CustomerUUID: customer.UUID,
			Status:       models.SessionStatusBooked,
			Duration:     in.Hours,
			Unit:         models.UnitHours,
		}
		if err := tx.Create(&session).Error; err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}

		total = billing.BookingTotal(table.Category.HourlyRate, in.Hours)
		payment := models.Payment{
			TableSessionUUID: session.UUID,
			Kind:             models.PaymentKindBooking,
			PaymentMethod:    in.PaymentMethod,
			Subtotal:         total,
			TaxRate:          decimal.Zero,
			TaxAmount:        decimal.Zero,
			TotalAmount:      total,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Infof("Table %s booked for %.2f hours (session %s)", in.TableUUID, in.Hours, session.UUID)
	s.afterChange(in.CompanyUUID, &session, events.SessionEvent{
		Type:          events.TypeSessionBooked,
		CustomerUUID:  session.CustomerUUID,
		PaymentMethod: in.PaymentMethod,
		TotalAmount:   &total,
	})
	return &session, nil
}

// Start mengaktifkan sesi BOOKED. startTime menjadi batas waktu bermain.
func (s *SessionService) Start(ctx context.Context, companyUUID, sessionUUID string) (*models.TableSession, error) {
	var session models.TableSession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findSession(tx, companyUUID, sessionUUID, &session); err != nil {
			return err
		}
		if session.Status != models.SessionStatusBooked {
			return ErrInvalidTransition
		}

		now := s.Now()
		end := now.Add(sessionDuration(session))
		res := tx.Model(&models.TableSession{}).
			Where("uuid = ? AND status = ?", session.UUID, models.SessionStatusBooked).
			Updates(map[string]interface{}{
				"status":     models.SessionStatusActive,
				"started_at": now,
				"start_time": end,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}
		if err := setTableStatus(tx, session.TableUUID, models.TableStatusOccupied); err != nil {
			return err
		}
		return tx.First(&session, "uuid = ?", session.UUID).Error
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Infof("Session %s started, ends at %s", session.UUID, session.StartTime.Format(time.RFC3339))
	s.afterChange(companyUUID, &session, events.SessionEvent{Type: events.TypeSessionStarted})
	return &session, nil
}

// Recharge menambah waktu sesi ACTIVE dengan tier harga kategori meja.
// Pajak yang dikirim client diverifikasi ulang terhadap policy billing.
func (s *SessionService) Recharge(ctx context.Context, in RechargeInput) (*models.TableSession, error) {
	if !billing.ValidPaymentMethod(in.PaymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}

	var session models.TableSession
	var expected billing.Totals
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findSession(tx, in.CompanyUUID, in.TableSessionUUID, &session); err != nil {
			return err
		}
		if session.Status != models.SessionStatusActive {
			return ErrInvalidTransition
		}

		var table models.Table
		if err := tx.First(&table, "uuid = ?", session.TableUUID).Error; err != nil {
			return ErrTableNotFound
		}
		var price models.CategoryPrice
		if err := tx.Where("uuid = ? AND category_uuid = ?", in.CategoryPriceUUID, table.CategoryUUID).First(&price).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPriceNotFound
			}
			return err
		}

		expected = billing.ComputeTotals(price.Price, in.PaymentMethod)
		if !expected.TaxRate.Equal(in.TaxRate) || !expected.TaxAmount.Equal(in.TaxAmount) || !expected.GrandTotal.Equal(in.TotalAmount) {
			utils.ErrorLogger.Warnf("Recharge %s rejected: expected tax=%s total=%s, got tax=%s total=%s",
				session.UUID, expected.TaxAmount, expected.GrandTotal, in.TaxAmount, in.TotalAmount)
			return ErrTaxMismatch
		}

		extra := billing.TierDuration(price)
		base := s.Now()
		if session.StartTime != nil && session.StartTime.After(base) {
			base = *session.StartTime
		}
		end := base.Add(extra)
		res := tx.Model(&models.TableSession{}).
			Where("uuid = ? AND status = ?", session.UUID, models.SessionStatusActive).
			Updates(map[string]interface{}{
				"start_time": end,
				"duration":   hoursOf(session) + extra.Hours(),
				"unit":       models.UnitHours,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}

		priceUUID := price.UUID
		payment := models.Payment{
			TableSessionUUID:  session.UUID,
			CategoryPriceUUID: &priceUUID,
			Kind:              models.PaymentKindRecharge,
			PaymentMethod:     in.PaymentMethod,
			Subtotal:          expected.Subtotal,
			TaxRate:           expected.TaxRate,
			TaxAmount:         expected.TaxAmount,
			TotalAmount:       expected.GrandTotal,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		return tx.First(&session, "uuid = ?", session.UUID).Error
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Infof("Session %s recharged, ends at %s", session.UUID, session.StartTime.Format(time.RFC3339))
	s.afterChange(in.CompanyUUID, &session, events.SessionEvent{
		Type:          events.TypeSessionRecharged,
		PaymentMethod: in.PaymentMethod,
		TotalAmount:   &expected.GrandTotal,
	})
	return &session, nil
}

// Stop menutup sesi. Sesi ACTIVE menjadi COMPLETED, sesi BOOKED menjadi CANCELLED.
func (s *SessionService) Stop(ctx context.Context, sessionUUID string) (*models.TableSession, error) {
	var session models.TableSession
	var companyUUID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findSession(tx, "", sessionUUID, &session); err != nil {
			return err
		}
		if session.IsTerminal() {
			return ErrInvalidTransition
		}
		var table models.Table
		if err := tx.First(&table, "uuid = ?", session.TableUUID).Error; err == nil {
			companyUUID = table.CompanyUUID
		}
		next := models.SessionStatusCompleted
		if session.Status == models.SessionStatusBooked {
			next = models.SessionStatusCancelled
		}
		return closeSession(tx, &session, next, s.Now())
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Infof("Session %s stopped with status %s", session.UUID, session.Status)
	s.afterChange(companyUUID, &session, events.SessionEvent{Type: events.TypeSessionStopped})
	return &session, nil
}

// ExpireBookings membatalkan sesi BOOKED yang tidak dimulai dalam ttl
func (s *SessionService) ExpireBookings(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := s.Now().Add(-ttl)
	var stale []models.TableSession
	if err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.SessionStatusBooked, cutoff).
		Find(&stale).Error; err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		session := stale[i]
		var companyUUID string
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var table models.Table
			if err := tx.First(&table, "uuid = ?", session.TableUUID).Error; err == nil {
				companyUUID = table.CompanyUUID
			}
			return closeSession(tx, &session, models.SessionStatusCancelled, s.Now())
		})
		if err != nil {
			if !errors.Is(err, ErrInvalidTransition) {
				utils.ErrorLogger.Errorf("Error expiring booking %s: %v", session.UUID, err)
			}
			continue
		}
		expired++
		utils.InfoLogger.Infof("Booking %s expired, table %s released", session.UUID, session.TableUUID)
		s.afterChange(companyUUID, &session, events.SessionEvent{Type: events.TypeSessionExpired})
	}
	return expired, nil
}

func (s *SessionService) afterChange(companyUUID string, session *models.TableSession, ev events.SessionEvent) {
	var current *models.TableSession
	if !session.IsTerminal() {
		current = session
	}
	// meja sudah hilang: company tidak diketahui, jangan broadcast ke semua console
	if companyUUID != "" {
		s.hub.BroadcastSessionUpdate(companyUUID, session.TableUUID, current)
		if stats, err := GetDashboardStats(s.db, companyUUID, s.Now()); err == nil {
			s.hub.BroadcastDashboardUpdate(companyUUID, stats)
		}
	} else {
		utils.ErrorLogger.Warnf("Session %s has no table, skipping broadcast", session.UUID)
	}

	ev.CompanyUUID = companyUUID
	ev.TableUUID = session.TableUUID
	ev.TableSessionUUID = session.UUID
	ev.Status = session.Status
	ev.StartTime = session.StartTime
	ev.OccurredAt = s.Now().UTC()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.publisher.Publish(ctx, ev); err != nil {
			utils.ErrorLogger.Warnf("Failed to publish %s for session %s: %v", ev.Type, ev.TableSessionUUID, err)
		}
	}()
}

func findTable(tx *gorm.DB, companyUUID, tableUUID string) (*models.Table, error) {
	var table models.Table
	err := tx.Preload("Category").
		Where("uuid = ? AND company_uuid = ?", tableUUID, companyUUID).
		First(&table).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &table, nil
}

// findSession memuat sesi; companyUUID kosong berarti tanpa filter company
func findSession(tx *gorm.DB, companyUUID, sessionUUID string, out *models.TableSession) error {
	q := tx.Model(&models.TableSession{}).Where("table_sessions.uuid = ?", sessionUUID)
	if companyUUID != "" {
		q = q.Joins("JOIN tables ON tables.uuid = table_sessions.table_uuid").
			Where("tables.company_uuid = ?", companyUUID)
	}
	if err := q.Select("table_sessions.*").First(out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	return nil
}

func closeSession(tx *gorm.DB, session *models.TableSession, status string, now time.Time) error {
	res := tx.Model(&models.TableSession{}).
		Where("uuid = ? AND status IN ?", session.UUID, models.NonTerminalStatuses).
		Updates(map[string]interface{}{"status": status, "end_time": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidTransition
	}
	if err := setTableStatus(tx, session.TableUUID, models.TableStatusAvailable); err != nil {
		return err
	}
	return tx.First(session, "uuid = ?", session.UUID).Error
}

func setTableStatus(tx *gorm.DB, tableUUID, status string) error {
	return tx.Model(&models.Table{}).Omit(clause.Associations).
		Where("uuid = ?", tableUUID).
		Update("status", status).Error
}

func sessionDuration(s models.TableSession) time.Duration {
	if s.Unit == models.UnitMinutes {
		return time.Duration(s.Duration * float64(time.Minute))
	}
	return billing.HoursDuration(s.Duration)
}

func hoursOf(s models.TableSession) float64 {
	return sessionDuration(s).Hours()
}
