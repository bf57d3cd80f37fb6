package flows

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/venue-app/billing"
	"github.com/yeremiapane/venue-app/models"
)

type RechargeConfig struct {
	CompanyUUID    string
	Billing        BillingService
	Sessions       SessionService
	Cache          SessionUpdater
	Notifier       Notifier
	Logger         logrus.FieldLogger
	RequestTimeout time.Duration
	// OnSuccess runs after a successful recharge, used to refresh dashboard counters.
	OnSuccess func()
}

// RechargeFlow drives the "add time" dialog of an active session. Tax is
// computed locally from the payment method, the snapshot is context only.
type RechargeFlow struct {
	cfg      RechargeConfig
	log      logrus.FieldLogger
	notifier Notifier

	mu         sync.Mutex
	wg         sync.WaitGroup
	open       bool
	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc

	tableUUID string
	session   models.TableSession
	prices    []models.CategoryPrice
	tier      *models.CategoryPrice
	method    string

	snapshot     *BillingPreview
	snapshotSeq  uint64
	snapshotBusy bool
	submitting   bool
}

func NewRechargeFlow(cfg RechargeConfig) *RechargeFlow {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	log := defaultLogger(cfg.Logger).WithField("flow", "recharge")
	return &RechargeFlow{
		cfg:      cfg,
		log:      log,
		notifier: defaultNotifier(cfg.Notifier, log),
	}
}

// Open starts the dialog for an ACTIVE session and fetches the table snapshot.
func (f *RechargeFlow) Open(tableUUID string, session *models.TableSession, prices []models.CategoryPrice) error {
	if !session.IsActive() {
		return ErrSessionNotActive
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
	}
	f.generation++
	f.open = true
	f.ctx, f.cancel = context.WithCancel(context.Background())
	f.tableUUID = tableUUID
	f.session = *session
	f.prices = append([]models.CategoryPrice(nil), prices...)
	f.tier = nil
	f.method = ""
	f.snapshot = nil
	f.snapshotBusy = false
	f.submitting = false
	f.requestSnapshotLocked()
	return nil
}

func (f *RechargeFlow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeLocked()
}

func (f *RechargeFlow) closeLocked() {
	if !f.open {
		return
	}
	f.generation++
	f.open = false
	f.snapshotBusy = false
	f.submitting = false
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

func (f *RechargeFlow) Wait() {
	f.wg.Wait()
}

func (f *RechargeFlow) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *RechargeFlow) Prices() []models.CategoryPrice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.CategoryPrice(nil), f.prices...)
}

func (f *RechargeFlow) Snapshot() *BillingPreview {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.snapshot == nil {
		return nil
	}
	s := *f.snapshot
	return &s
}

func (f *RechargeFlow) SnapshotLoading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotBusy
}

// SelectTier picks one of the table's price tiers and refreshes the snapshot.
func (f *RechargeFlow) SelectTier(categoryPriceUUID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrDialogClosed
	}
	var tier *models.CategoryPrice
	for i := range f.prices {
		if f.prices[i].UUID == categoryPriceUUID {
			p := f.prices[i]
			tier = &p
			break
		}
	}
	if tier == nil {
		return ErrUnknownTier
	}
	f.tier = tier
	f.requestSnapshotLocked()
	return nil
}

func (f *RechargeFlow) Tier() *models.CategoryPrice {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tier == nil {
		return nil
	}
	t := *f.tier
	return &t
}

func (f *RechargeFlow) SetPaymentMethod(method string) error {
	if method != "" && !billing.ValidPaymentMethod(method) {
		return ErrUnknownPaymentMethod
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrDialogClosed
	}
	f.method = method
	return nil
}

func (f *RechargeFlow) PaymentMethod() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.method
}

// Totals are the raw values sent on submit.
func (f *RechargeFlow) Totals() billing.Totals {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalsLocked()
}

func (f *RechargeFlow) DisplayTotals() billing.DisplayTotals {
	return f.Totals().Display()
}

func (f *RechargeFlow) totalsLocked() billing.Totals {
	subtotal := decimal.Zero
	if f.tier != nil {
		subtotal = f.tier.Price
	}
	return billing.ComputeTotals(subtotal, f.method)
}

func (f *RechargeFlow) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateLocked() == nil
}

func (f *RechargeFlow) validateLocked() error {
	switch {
	case !f.open:
		return ErrDialogClosed
	case f.submitting:
		return ErrSubmitInProgress
	case f.tier == nil:
		return ErrTierRequired
	case f.method == "":
		return ErrPaymentMethodRequired
	case f.snapshotBusy:
		return ErrPreviewLoading
	}
	return nil
}

func (f *RechargeFlow) requestSnapshotLocked() {
	f.snapshotSeq++
	f.snapshotBusy = true
	seq, gen := f.snapshotSeq, f.generation
	req := RechargePreviewRequest{
		CompanyUUID: f.cfg.CompanyUUID,
		TableUUID:   f.tableUUID,
	}
	if f.tier != nil {
		req.CategoryPriceUUID = f.tier.UUID
	}
	parent := f.ctx

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		ctx, cancel := withTimeout(parent, f.cfg.RequestTimeout)
		defer cancel()

		var snap *BillingPreview
		err := callSafely(f.log, "recharge_preview", func() error {
			var err error
			snap, err = f.cfg.Billing.RechargePreview(ctx, req)
			return err
		})

		f.mu.Lock()
		defer f.mu.Unlock()
		if gen != f.generation || seq != f.snapshotSeq {
			return
		}
		f.snapshotBusy = false
		if err != nil {
			f.log.WithError(err).WithField("table_uuid", req.TableUUID).Warn("recharge snapshot failed")
			return
		}
		if snap != nil {
			f.snapshot = snap
		}
	}()
}

// Submit posts the recharge with the unrounded totals. On success the shared
// cache receives the session returned by the server.
func (f *RechargeFlow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if err := f.validateLocked(); err != nil {
		f.mu.Unlock()
		return err
	}
	f.submitting = true
	gen := f.generation
	totals := f.totalsLocked()
	tableUUID := f.tableUUID
	req := RechargeRequest{
		TableSessionUUID:  f.session.UUID,
		CategoryPriceUUID: f.tier.UUID,
		PaymentMethod:     f.method,
		CompanyUUID:       f.cfg.CompanyUUID,
		TaxRate:           totals.TaxRate,
		TaxAmount:         totals.TaxAmount,
		TotalAmount:       totals.GrandTotal,
	}
	f.mu.Unlock()

	reqCtx, cancel := withTimeout(ctx, f.cfg.RequestTimeout)
	defer cancel()

	var session *models.TableSession
	err := callSafely(f.log, "recharge_session", func() error {
		var err error
		session, err = f.cfg.Sessions.RechargeSession(reqCtx, req)
		if err == nil && session == nil {
			err = errMissingSessionInPayload
		}
		return err
	})

	f.mu.Lock()
	stale := gen != f.generation
	if !stale {
		f.submitting = false
	}
	if err != nil {
		f.mu.Unlock()
		f.log.WithError(err).WithField("session_uuid", req.TableSessionUUID).Error("recharge failed")
		if !stale {
			f.notifier.NotifyError(userMessage(err, "Failed to recharge session, please try again"))
		}
		return err
	}
	if !stale {
		f.closeLocked()
	}
	f.mu.Unlock()

	// The server accepted the recharge, so the cache is updated even if the dialog was closed.
	if f.cfg.Cache != nil {
		f.cfg.Cache.UpdateSession(tableUUID, session)
	}
	if stale {
		return nil
	}
	f.log.WithField("session_uuid", session.UUID).Info("session recharged")
	f.notifier.NotifySuccess("Session recharged successfully")
	if f.cfg.OnSuccess != nil {
		f.cfg.OnSuccess()
	}
	return nil
}
