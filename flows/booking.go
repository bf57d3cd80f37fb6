package flows

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/venue-app/billing"
	"github.com/yeremiapane/venue-app/models"
	"github.com/yeremiapane/venue-app/utils"
)

type BookingState int

const (
	BookingClosed BookingState = iota
	BookingIdle
	BookingLoading
	BookingReady
	BookingSubmitting
)

func (s BookingState) String() string {
	switch s {
	case BookingIdle:
		return "idle"
	case BookingLoading:
		return "billing-loading"
	case BookingReady:
		return "ready"
	case BookingSubmitting:
		return "submitting"
	default:
		return "closed"
	}
}

type BookingConfig struct {
	CompanyUUID    string
	Billing        BillingService
	Sessions       SessionService
	Customers      CustomerService
	Notifier       Notifier
	Logger         logrus.FieldLogger
	RequestTimeout time.Duration
	SearchDelay    time.Duration
	// OnSuccess runs after a successful booking, typically to refresh the table list.
	OnSuccess func(session *models.TableSession)
}

// BookingFlow drives the "book a table" dialog.
type BookingFlow struct {
	cfg      BookingConfig
	log      logrus.FieldLogger
	notifier Notifier
	debounce *utils.Debouncer

	mu         sync.Mutex
	wg         sync.WaitGroup
	open       bool
	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc

	tableUUID string
	prices    []models.CategoryPrice
	hours     float64
	customer  *models.Customer
	method    string

	preview      *BillingPreview
	previewSeq   uint64
	previewBusy  bool
	previewFetch bool
	submitting   bool

	query     string
	searchSeq uint64
	results   []models.Customer
	searching bool
}

func NewBookingFlow(cfg BookingConfig) *BookingFlow {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.SearchDelay == 0 {
		cfg.SearchDelay = DefaultSearchDelay
	}
	log := defaultLogger(cfg.Logger).WithField("flow", "booking")
	return &BookingFlow{
		cfg:      cfg,
		log:      log,
		notifier: defaultNotifier(cfg.Notifier, log),
		debounce: utils.NewDebouncer(cfg.SearchDelay),
	}
}

// Open resets the form for tableUUID and requests the preview for the default duration.
func (f *BookingFlow) Open(tableUUID string, prices []models.CategoryPrice) {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	f.debounce.Cancel()
	f.generation++
	f.open = true
	f.ctx, f.cancel = context.WithCancel(context.Background())
	f.tableUUID = tableUUID
	f.prices = append([]models.CategoryPrice(nil), prices...)
	f.hours = billing.DefaultBookingHours
	f.customer = nil
	f.method = ""
	f.preview = nil
	f.previewBusy = false
	f.previewFetch = false
	f.submitting = false
	f.query = ""
	f.results = nil
	f.searching = false
	f.requestPreviewLocked()
	f.mu.Unlock()
}

// Close discards the dialog. Responses still in flight are dropped.
func (f *BookingFlow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeLocked()
}

func (f *BookingFlow) closeLocked() {
	if !f.open {
		return
	}
	f.debounce.Cancel()
	f.generation++
	f.open = false
	f.previewBusy = false
	f.searching = false
	f.submitting = false
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

// Wait blocks until in-flight preview requests have returned. Debounced
// searches run on their own timer and are not tracked.
func (f *BookingFlow) Wait() {
	f.wg.Wait()
}

func (f *BookingFlow) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *BookingFlow) State() BookingState {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case !f.open:
		return BookingClosed
	case f.submitting:
		return BookingSubmitting
	case f.previewBusy:
		return BookingLoading
	case f.previewFetch:
		return BookingReady
	default:
		return BookingIdle
	}
}

func (f *BookingFlow) TableUUID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tableUUID
}

func (f *BookingFlow) Prices() []models.CategoryPrice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.CategoryPrice(nil), f.prices...)
}

func (f *BookingFlow) Hours() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hours
}

// Preview returns the latest applied preview, or nil if none arrived yet.
func (f *BookingFlow) Preview() *BillingPreview {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.preview == nil {
		return nil
	}
	p := *f.preview
	return &p
}

// SetDuration changes the tier and re-requests the preview.
func (f *BookingFlow) SetDuration(hours float64) error {
	if !billing.ValidHours(hours) {
		return ErrInvalidHours
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrDialogClosed
	}
	f.hours = hours
	f.requestPreviewLocked()
	return nil
}

func (f *BookingFlow) requestPreviewLocked() {
	f.previewSeq++
	f.previewBusy = true
	seq, gen := f.previewSeq, f.generation
	req := BookingPreviewRequest{
		CompanyUUID: f.cfg.CompanyUUID,
		TableUUID:   f.tableUUID,
		Hours:       f.hours,
	}
	parent := f.ctx

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		ctx, cancel := withTimeout(parent, f.cfg.RequestTimeout)
		defer cancel()

		var preview *BillingPreview
		err := callSafely(f.log, "booking_preview", func() error {
			var err error
			preview, err = f.cfg.Billing.BookingPreview(ctx, req)
			return err
		})
		f.applyPreview(gen, seq, preview, err)
	}()
}

func (f *BookingFlow) applyPreview(gen, seq uint64, preview *BillingPreview, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation || seq != f.previewSeq {
		return
	}
	f.previewBusy = false
	f.previewFetch = true
	if err != nil {
		f.log.WithError(err).WithField("table_uuid", f.tableUUID).Warn("billing preview failed")
		return
	}
	if preview != nil {
		if preview.DurationLabel == "" {
			preview.DurationLabel = billing.HoursLabel(preview.Hours)
		}
		f.preview = preview
	}
}

// Search schedules a debounced customer search. An empty query cancels any pending search.
func (f *BookingFlow) Search(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return
	}
	f.searchSeq++
	f.query = text
	query := strings.TrimSpace(text)
	if query == "" {
		f.debounce.Cancel()
		f.results = nil
		f.searching = false
		return
	}
	seq, gen := f.searchSeq, f.generation
	f.debounce.Trigger(func() {
		f.runSearch(gen, seq, query)
	})
}

func (f *BookingFlow) runSearch(gen, seq uint64, query string) {
	f.mu.Lock()
	if gen != f.generation || seq != f.searchSeq {
		f.mu.Unlock()
		return
	}
	f.searching = true
	parent := f.ctx
	f.mu.Unlock()

	ctx, cancel := withTimeout(parent, f.cfg.RequestTimeout)
	defer cancel()

	var found []models.Customer
	err := callSafely(f.log, "customer_search", func() error {
		var err error
		found, err = f.cfg.Customers.SearchCustomers(ctx, f.cfg.CompanyUUID, query)
		return err
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation || seq != f.searchSeq {
		return
	}
	f.searching = false
	if err != nil {
		f.log.WithError(err).WithField("query", query).Warn("customer search failed")
		return
	}
	f.results = FilterCustomers(found, query)
}

func (f *BookingFlow) Query() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.query
}

func (f *BookingFlow) Searching() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searching
}

// Results is the current autocomplete list.
func (f *BookingFlow) Results() []models.Customer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Customer(nil), f.results...)
}

func (f *BookingFlow) Options() []CustomerOption {
	return Options(f.Results())
}

func (f *BookingFlow) SelectCustomer(c *models.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return ErrDialogClosed
	}
	if c == nil {
		f.customer = nil
		return nil
	}
	cp := *c
	f.customer = &cp
	return nil
}

func (f *BookingFlow) Customer() *models.Customer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.customer == nil {
		return nil
	}
	c := *f.customer
	return &c
}

func (f *BookingFlow) SetPaymentMethod(method string) error {
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

func (f *BookingFlow) PaymentMethod() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.method
}

func (f *BookingFlow) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateLocked() == nil
}

func (f *BookingFlow) validateLocked() error {
	switch {
	case !f.open:
		return ErrDialogClosed
	case f.submitting:
		return ErrSubmitInProgress
	case f.customer == nil:
		return ErrCustomerRequired
	case f.method == "":
		return ErrPaymentMethodRequired
	case f.previewBusy:
		return ErrPreviewLoading
	}
	return nil
}

// Submit posts the booking. Validation errors return without a round trip;
// server failures are reported through the notifier and leave the dialog open.
func (f *BookingFlow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if err := f.validateLocked(); err != nil {
		f.mu.Unlock()
		return err
	}
	f.submitting = true
	gen := f.generation
	req := BookRequest{
		TableUUID:     f.tableUUID,
		CustomerUUID:  f.customer.UUID,
		PaymentMethod: f.method,
		Hours:         f.hours,
		CompanyUUID:   f.cfg.CompanyUUID,
	}
	f.mu.Unlock()

	reqCtx, cancel := withTimeout(ctx, f.cfg.RequestTimeout)
	defer cancel()

	var session *models.TableSession
	err := callSafely(f.log, "book_session", func() error {
		var err error
		session, err = f.cfg.Sessions.BookSession(reqCtx, req)
		return err
	})

	f.mu.Lock()
	if gen != f.generation {
		f.mu.Unlock()
		f.log.WithField("table_uuid", req.TableUUID).Info("booking result arrived after dialog closed")
		return err
	}
	f.submitting = false
	if err != nil {
		f.mu.Unlock()
		f.log.WithError(err).WithField("table_uuid", req.TableUUID).Error("booking failed")
		f.notifier.NotifyError(userMessage(err, "Failed to book session, please try again"))
		return err
	}
	f.closeLocked()
	f.mu.Unlock()

	f.log.WithField("table_uuid", req.TableUUID).Info("table booked")
	f.notifier.NotifySuccess("Session booked successfully")
	if f.cfg.OnSuccess != nil {
		f.cfg.OnSuccess(session)
	}
	return nil
}
