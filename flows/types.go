// Package flows implements the operator dialogs of the console: booking a
// table, recharging an active session and the start/stop controls of a
// table card. Flows talk to the backend only through the interfaces below.
package flows

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/venue-app/models"
	"github.com/yeremiapane/venue-app/utils"
)

var (
	ErrDialogClosed            = errors.New("dialog is not open")
	ErrInvalidHours            = errors.New("duration must be 15, 30, 45 minutes or 1 hour")
	ErrCustomerRequired        = errors.New("customer is required")
	ErrPaymentMethodRequired   = errors.New("payment method is required")
	ErrUnknownPaymentMethod    = errors.New("unknown payment method")
	ErrPreviewLoading          = errors.New("billing preview is still loading")
	ErrTierRequired            = errors.New("duration tier is required")
	ErrUnknownTier             = errors.New("duration tier does not belong to this table")
	ErrSessionNotActive        = errors.New("session is not active")
	ErrSubmitInProgress        = errors.New("a request is already in progress")
	ErrInvalidTransition       = errors.New("session cannot change to the requested status")
	ErrUnexpected              = errors.New("unexpected error")
	errMissingSessionInPayload = errors.New("response has no session")
)

const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultSearchDelay    = 800 * time.Millisecond
)

// BillingPreview is the server computed, not yet committed cost summary.
// Values are shown as received; the console never recomputes them.
type BillingPreview struct {
	TableName     string
	CategoryName  string
	Hours         float64
	DurationLabel string
	HourlyRate    decimal.Decimal
	CurrencyName  string
	TotalAmount   decimal.Decimal
}

type BookingPreviewRequest struct {
	CompanyUUID string  `json:"companyUuid"`
	TableUUID   string  `json:"tableUuid"`
	Hours       float64 `json:"hours"`
}

type RechargePreviewRequest struct {
	CompanyUUID       string `json:"companyUuid"`
	TableUUID         string `json:"tableUuid"`
	CategoryPriceUUID string `json:"categoryPriceUuid,omitempty"`
}

type BookRequest struct {
	TableUUID     string  `json:"tableUuid"`
	CustomerUUID  string  `json:"customerUuid"`
	PaymentMethod string  `json:"paymentMethod"`
	Hours         float64 `json:"hours"`
	CompanyUUID   string  `json:"companyUuid"`
}

type RechargeRequest struct {
	TableSessionUUID  string          `json:"tableSessionUuid"`
	CategoryPriceUUID string          `json:"categoryPriceUuid"`
	PaymentMethod     string          `json:"paymentMethod"`
	CompanyUUID       string          `json:"companyUuid"`
	TaxRate           decimal.Decimal `json:"taxRate"`
	TaxAmount         decimal.Decimal `json:"taxAmount"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
}

type StartRequest struct {
	CompanyUUID      string `json:"companyUuid"`
	TableSessionUUID string `json:"tableSessionUuid"`
}

type StopRequest struct {
	TableSessionID string `json:"tableSessionId"`
}

type BillingService interface {
	BookingPreview(ctx context.Context, req BookingPreviewRequest) (*BillingPreview, error)
	RechargePreview(ctx context.Context, req RechargePreviewRequest) (*BillingPreview, error)
}

type SessionService interface {
	BookSession(ctx context.Context, req BookRequest) (*models.TableSession, error)
	RechargeSession(ctx context.Context, req RechargeRequest) (*models.TableSession, error)
	StartSession(ctx context.Context, req StartRequest) (*models.TableSession, error)
	StopSession(ctx context.Context, req StopRequest) error
}

type CustomerService interface {
	SearchCustomers(ctx context.Context, companyUUID, searchText string) ([]models.Customer, error)
}

// SessionUpdater is the write side of the shared session cache.
type SessionUpdater interface {
	UpdateSession(tableUUID string, session *models.TableSession)
}

// Notifier presents success/error toasts to the operator.
type Notifier interface {
	NotifySuccess(message string)
	NotifyError(message string)
}

// LogNotifier writes notifications to a logger; used when no UI is attached.
type LogNotifier struct {
	Logger logrus.FieldLogger
}

func (n LogNotifier) NotifySuccess(message string) {
	n.logger().WithField("notify", "success").Info(message)
}

func (n LogNotifier) NotifyError(message string) {
	n.logger().WithField("notify", "error").Warn(message)
}

func (n LogNotifier) logger() logrus.FieldLogger {
	if n.Logger == nil {
		return utils.InfoLogger
	}
	return n.Logger
}

// UserMessager is implemented by errors carrying a message meant for the operator.
type UserMessager interface {
	UserMessage() string
}

func userMessage(err error, fallback string) string {
	var um UserMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return fallback
}

// callSafely runs fn and turns a panic into ErrUnexpected.
func callSafely(log logrus.FieldLogger, op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("op", op).Errorf("recovered panic: %v", r)
			err = ErrUnexpected
		}
	}()
	return fn()
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func defaultLogger(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return utils.InfoLogger
	}
	return l
}

func defaultNotifier(n Notifier, log logrus.FieldLogger) Notifier {
	if n == nil {
		return LogNotifier{Logger: log}
	}
	return n
}
