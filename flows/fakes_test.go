package flows

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/venue-app/models"
)

type fakeAPIError struct{ msg string }

func (e *fakeAPIError) Error() string       { return "api: " + e.msg }
func (e *fakeAPIError) UserMessage() string { return e.msg }

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) NotifySuccess(m string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, m)
}

func (n *recordingNotifier) NotifyError(m string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, m)
}

func (n *recordingNotifier) Successes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.successes...)
}

func (n *recordingNotifier) Errors() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.errors...)
}

// fakeAPI implements every backend interface the flows depend on. Function
// fields are optional; defaults return a plausible response.
type fakeAPI struct {
	mu sync.Mutex

	bookingPreview  func(ctx context.Context, req BookingPreviewRequest) (*BillingPreview, error)
	rechargePreview func(ctx context.Context, req RechargePreviewRequest) (*BillingPreview, error)
	book            func(ctx context.Context, req BookRequest) (*models.TableSession, error)
	recharge        func(ctx context.Context, req RechargeRequest) (*models.TableSession, error)
	start           func(ctx context.Context, req StartRequest) (*models.TableSession, error)
	stop            func(ctx context.Context, req StopRequest) error
	search          func(ctx context.Context, companyUUID, text string) ([]models.Customer, error)

	previewReqs  []BookingPreviewRequest
	snapshotReqs []RechargePreviewRequest
	bookReqs     []BookRequest
	rechargeReqs []RechargeRequest
	startReqs    []StartRequest
	stopReqs     []StopRequest
	searches     []string
}

func (f *fakeAPI) BookingPreview(ctx context.Context, req BookingPreviewRequest) (*BillingPreview, error) {
	f.mu.Lock()
	f.previewReqs = append(f.previewReqs, req)
	fn := f.bookingPreview
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return previewFor(req.Hours), nil
}

func (f *fakeAPI) RechargePreview(ctx context.Context, req RechargePreviewRequest) (*BillingPreview, error) {
	f.mu.Lock()
	f.snapshotReqs = append(f.snapshotReqs, req)
	fn := f.rechargePreview
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return &BillingPreview{TableName: "Table 1", CategoryName: "VIP " + req.CategoryPriceUUID}, nil
}

func (f *fakeAPI) BookSession(ctx context.Context, req BookRequest) (*models.TableSession, error) {
	f.mu.Lock()
	f.bookReqs = append(f.bookReqs, req)
	fn := f.book
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return &models.TableSession{UUID: "s-new", TableUUID: req.TableUUID, Status: models.SessionStatusBooked}, nil
}

func (f *fakeAPI) RechargeSession(ctx context.Context, req RechargeRequest) (*models.TableSession, error) {
	f.mu.Lock()
	f.rechargeReqs = append(f.rechargeReqs, req)
	fn := f.recharge
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return &models.TableSession{UUID: req.TableSessionUUID, Status: models.SessionStatusActive}, nil
}

func (f *fakeAPI) StartSession(ctx context.Context, req StartRequest) (*models.TableSession, error) {
	f.mu.Lock()
	f.startReqs = append(f.startReqs, req)
	fn := f.start
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return &models.TableSession{UUID: req.TableSessionUUID, Status: models.SessionStatusActive}, nil
}

func (f *fakeAPI) StopSession(ctx context.Context, req StopRequest) error {
	f.mu.Lock()
	f.stopReqs = append(f.stopReqs, req)
	fn := f.stop
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return nil
}

func (f *fakeAPI) SearchCustomers(ctx context.Context, companyUUID, text string) ([]models.Customer, error) {
	f.mu.Lock()
	f.searches = append(f.searches, text)
	fn := f.search
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, companyUUID, text)
	}
	return nil, nil
}

func (f *fakeAPI) Searches() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searches...)
}

func (f *fakeAPI) BookRequests() []BookRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]BookRequest(nil), f.bookReqs...)
}

func (f *fakeAPI) RechargeRequests() []RechargeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RechargeRequest(nil), f.rechargeReqs...)
}

func previewFor(hours float64) *BillingPreview {
	return &BillingPreview{
		TableName:    "Table 1",
		CategoryName: "Regular",
		Hours:        hours,
		HourlyRate:   decimal.NewFromInt(40000),
		CurrencyName: "IDR",
		TotalAmount:  decimal.NewFromInt(40000).Mul(decimal.NewFromFloat(hours)),
	}
}
