package apiclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/yeremiapane/venue-app/billing"
	"github.com/yeremiapane/venue-app/flows"
)

var ErrEmptyPreview = errors.New("billing preview response has no billing data")

// previewPayload keeps every field optional so missing values can be defaulted.
type previewPayload struct {
	Table *struct {
		Name     *string `json:"name"`
		Category *struct {
			Name *string `json:"name"`
		} `json:"category"`
	} `json:"table"`
	Billing *struct {
		Hours         *float64         `json:"hours"`
		DurationLabel *string          `json:"durationLabel"`
		HourlyRate    *decimal.Decimal `json:"hourlyRate"`
		CurrencyName  *string          `json:"currencyName"`
		TotalAmount   *decimal.Decimal `json:"totalAmount"`
	} `json:"billing"`
}

func (p previewPayload) toPreview() (*flows.BillingPreview, error) {
	if p.Billing == nil {
		return nil, ErrEmptyPreview
	}
	out := &flows.BillingPreview{CurrencyName: "IDR"}
	if p.Table != nil {
		if p.Table.Name != nil {
			out.TableName = *p.Table.Name
		}
		if p.Table.Category != nil && p.Table.Category.Name != nil {
			out.CategoryName = *p.Table.Category.Name
		}
	}
	b := p.Billing
	if b.Hours != nil {
		out.Hours = *b.Hours
	}
	if b.DurationLabel != nil {
		out.DurationLabel = *b.DurationLabel
	} else if out.Hours > 0 {
		out.DurationLabel = billing.HoursLabel(out.Hours)
	}
	if b.HourlyRate != nil {
		out.HourlyRate = *b.HourlyRate
	}
	if b.CurrencyName != nil && *b.CurrencyName != "" {
		out.CurrencyName = *b.CurrencyName
	}
	if b.TotalAmount != nil {
		out.TotalAmount = *b.TotalAmount
	}
	return out, nil
}

func (c *Client) BookingPreview(ctx context.Context, req flows.BookingPreviewRequest) (*flows.BillingPreview, error) {
	var payload previewPayload
	if err := c.do(ctx, http.MethodPost, "/api/billing/preview", nil, req, &payload); err != nil {
		return nil, err
	}
	return payload.toPreview()
}

func (c *Client) RechargePreview(ctx context.Context, req flows.RechargePreviewRequest) (*flows.BillingPreview, error) {
	var payload previewPayload
	if err := c.do(ctx, http.MethodPost, "/api/billing/preview", nil, req, &payload); err != nil {
		return nil, err
	}
	return payload.toPreview()
}
