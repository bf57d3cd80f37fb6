package flows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/venue-app/billing"
	"github.com/yeremiapane/venue-app/models"
	"github.com/yeremiapane/venue-app/sessioncache"
)

var activeSession = models.TableSession{UUID: "s1", TableUUID: "t1", Status: models.SessionStatusActive}

func tiers() []models.CategoryPrice {
	return []models.CategoryPrice{
		{UUID: "p-hour", Duration: 1, Unit: models.UnitHours, Price: decimal.NewFromInt(100)},
		{UUID: "p-odd", Duration: 30, Unit: models.UnitMinutes, Price: decimal.RequireFromString("10.55")},
	}
}

func newRechargeFlow(api *fakeAPI, cache SessionUpdater, n *recordingNotifier, onSuccess func()) *RechargeFlow {
	return NewRechargeFlow(RechargeConfig{
		CompanyUUID:    "co-1",
		Billing:        api,
		Sessions:       api,
		Cache:          cache,
		Notifier:       n,
		RequestTimeout: time.Second,
		OnSuccess:      onSuccess,
	})
}

func TestRechargeRequiresActiveSession(t *testing.T) {
	f := newRechargeFlow(&fakeAPI{}, nil, &recordingNotifier{}, nil)

	assert.ErrorIs(t, f.Open("t1", nil, tiers()), ErrSessionNotActive)
	booked := models.TableSession{UUID: "s1", Status: models.SessionStatusBooked}
	assert.ErrorIs(t, f.Open("t1", &booked, tiers()), ErrSessionNotActive)
	assert.False(t, f.IsOpen())
}

func TestRechargeOpenFetchesSnapshotWithoutTier(t *testing.T) {
	api := &fakeAPI{}
	f := newRechargeFlow(api, nil, &recordingNotifier{}, nil)

	require.NoError(t, f.Open("t1", &activeSession, tiers()))
	f.Wait()

	require.Len(t, api.snapshotReqs, 1)
	assert.Equal(t, RechargePreviewRequest{CompanyUUID: "co-1", TableUUID: "t1"}, api.snapshotReqs[0])
	require.NotNil(t, f.Snapshot())
	assert.Equal(t, "Table 1", f.Snapshot().TableName)
	assert.Nil(t, f.Tier())
	assert.True(t, f.Totals().GrandTotal.IsZero())
}

func TestRechargeTotalsFollowPaymentMethod(t *testing.T) {
	f := newRechargeFlow(&fakeAPI{}, nil, &recordingNotifier{}, nil)
	require.NoError(t, f.Open("t1", &activeSession, tiers()))
	defer f.Wait()
	require.NoError(t, f.SelectTier("p-hour"))

	tests := []struct {
		method string
		tax    string
		total  string
		rate   string
	}{
		{billing.PaymentCard, "8.00", "108.00", "8.00"},
		{billing.PaymentCash, "15.00", "115.00", "15.00"},
		{billing.PaymentBankTransfer, "15.00", "115.00", "15.00"},
		{"", "0.00", "100.00", "0.00"},
	}
	for _, tt := range tests {
		require.NoError(t, f.SetPaymentMethod(tt.method))
		d := f.DisplayTotals()
		assert.Equal(t, "100.00", d.Subtotal, tt.method)
		assert.Equal(t, tt.tax, d.TaxAmount, tt.method)
		assert.Equal(t, tt.total, d.GrandTotal, tt.method)
		assert.Equal(t, tt.rate, d.TaxRate, tt.method)
	}
}

func TestRechargeEmptyPriceListNeverSubmittable(t *testing.T) {
	api := &fakeAPI{}
	f := newRechargeFlow(api, nil, &recordingNotifier{}, nil)
	require.NoError(t, f.Open("t1", &activeSession, nil))
	f.Wait()

	require.NoError(t, f.SetPaymentMethod(billing.PaymentCard))
	assert.ErrorIs(t, f.SelectTier(""), ErrUnknownTier)
	assert.False(t, f.CanSubmit())
	assert.ErrorIs(t, f.Submit(context.Background()), ErrTierRequired)
	assert.Empty(t, api.RechargeRequests())
}

func TestRechargeSubmitWaitsForSnapshot(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{}
	api.rechargePreview = func(ctx context.Context, req RechargePreviewRequest) (*BillingPreview, error) {
		if req.CategoryPriceUUID != "" {
			<-gate
		}
		return &BillingPreview{TableName: "Table 1", CategoryName: "VIP"}, nil
	}
	f := newRechargeFlow(api, nil, &recordingNotifier{}, nil)

	require.NoError(t, f.Open("t1", &activeSession, tiers()))
	f.Wait()
	require.NoError(t, f.SetPaymentMethod(billing.PaymentCard))
	require.NoError(t, f.SelectTier("p-hour"))

	assert.True(t, f.SnapshotLoading())
	assert.False(t, f.CanSubmit())
	assert.ErrorIs(t, f.Submit(context.Background()), ErrPreviewLoading)
	assert.Empty(t, api.RechargeRequests())

	close(gate)
	f.Wait()
	assert.False(t, f.SnapshotLoading())
	assert.True(t, f.CanSubmit())
	require.NoError(t, f.Submit(context.Background()))
	assert.Len(t, api.RechargeRequests(), 1)
}

func TestRechargeSnapshotFailureReleasesSubmit(t *testing.T) {
	api := &fakeAPI{}
	api.rechargePreview = func(ctx context.Context, req RechargePreviewRequest) (*BillingPreview, error) {
		return nil, errors.New("timeout")
	}
	f := newRechargeFlow(api, nil, &recordingNotifier{}, nil)

	require.NoError(t, f.Open("t1", &activeSession, tiers()))
	require.NoError(t, f.SelectTier("p-hour"))
	require.NoError(t, f.SetPaymentMethod(billing.PaymentCash))
	f.Wait()

	assert.Nil(t, f.Snapshot())
	assert.True(t, f.CanSubmit())
}

func TestRechargeSubmitSendsRawTotals(t *testing.T) {
	api := &fakeAPI{}
	api.recharge = func(ctx context.Context, req RechargeRequest) (*models.TableSession, error) {
		end := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		return &models.TableSession{UUID: "s1", TableUUID: "t1", Status: models.SessionStatusActive, StartTime: &end}, nil
	}
	cache := sessioncache.New()
	n := &recordingNotifier{}
	refreshed := 0
	f := newRechargeFlow(api, cache, n, func() { refreshed++ })

	require.NoError(t, f.Open("t1", &activeSession, tiers()))
	require.NoError(t, f.SelectTier("p-odd"))
	require.NoError(t, f.SetPaymentMethod(billing.PaymentCard))
	f.Wait()
	assert.Equal(t, "0.84", f.DisplayTotals().TaxAmount)

	require.NoError(t, f.Submit(context.Background()))

	reqs := api.RechargeRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "s1", reqs[0].TableSessionUUID)
	assert.Equal(t, "p-odd", reqs[0].CategoryPriceUUID)
	assert.Equal(t, "co-1", reqs[0].CompanyUUID)
	assert.True(t, reqs[0].TaxRate.Equal(decimal.NewFromInt(8)))
	assert.True(t, reqs[0].TaxAmount.Equal(decimal.RequireFromString("0.844")), reqs[0].TaxAmount.String())
	assert.True(t, reqs[0].TotalAmount.Equal(decimal.RequireFromString("11.394")), reqs[0].TotalAmount.String())

	cached := cache.Session("t1")
	require.NotNil(t, cached)
	require.NotNil(t, cached.StartTime)
	assert.Equal(t, 12, cached.StartTime.Hour())
	assert.Equal(t, 1, refreshed)
	assert.Len(t, n.Successes(), 1)
	assert.False(t, f.IsOpen())
}

func TestRechargeSubmitFailureStaysOpen(t *testing.T) {
	api := &fakeAPI{}
	api.recharge = func(ctx context.Context, req RechargeRequest) (*models.TableSession, error) {
		return nil, &fakeAPIError{msg: "Tax amount mismatch"}
	}
	cache := sessioncache.New()
	n := &recordingNotifier{}
	refreshed := 0
	f := newRechargeFlow(api, cache, n, func() { refreshed++ })

	require.NoError(t, f.Open("t1", &activeSession, tiers()))
	require.NoError(t, f.SelectTier("p-hour"))
	require.NoError(t, f.SetPaymentMethod(billing.PaymentCash))
	f.Wait()

	assert.Error(t, f.Submit(context.Background()))
	assert.True(t, f.IsOpen())
	assert.True(t, f.CanSubmit())
	assert.Equal(t, []string{"Tax amount mismatch"}, n.Errors())
	assert.Nil(t, cache.Session("t1"))
	assert.Zero(t, refreshed)
}

func TestRechargeStaleSnapshotIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeAPI{}
	api.rechargePreview = func(ctx context.Context, req RechargePreviewRequest) (*BillingPreview, error) {
		if req.CategoryPriceUUID == "" {
			<-gate
			return &BillingPreview{TableName: "Table 1", CategoryName: "untiered"}, nil
		}
		return &BillingPreview{TableName: "Table 1", CategoryName: "tier " + req.CategoryPriceUUID}, nil
	}
	f := newRechargeFlow(api, nil, &recordingNotifier{}, nil)

	require.NoError(t, f.Open("t1", &activeSession, tiers()))
	require.NoError(t, f.SelectTier("p-hour"))
	assert.Eventually(t, func() bool { return f.Snapshot() != nil }, time.Second, 5*time.Millisecond)

	close(gate)
	f.Wait()

	assert.Equal(t, "tier p-hour", f.Snapshot().CategoryName)
	assert.False(t, f.SnapshotLoading())
}
