// Package billing holds the pricing rules shared by the console and the backend:
// booking duration tiers, tax rate per payment method and recharge totals.
package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/venue-app/models"
)

const (
	PaymentCard         = "CARD"
	PaymentCash         = "CASH"
	PaymentBankTransfer = "BANK_TRANSFER"
)

var ErrInvalidHours = errors.New("hours must be one of 0.25, 0.5, 0.75 or 1")

// DurationTier adalah pilihan durasi booking dalam jam.
type DurationTier struct {
	Hours float64
	Label string
}

var BookingTiers = []DurationTier{
	{Hours: 0.25, Label: "15 minutes"},
	{Hours: 0.5, Label: "30 minutes"},
	{Hours: 0.75, Label: "45 minutes"},
	{Hours: 1, Label: "1 hour"},
}

const DefaultBookingHours = 1.0

func ValidHours(hours float64) bool {
	for _, t := range BookingTiers {
		if t.Hours == hours {
			return true
		}
	}
	return false
}

// HoursLabel returns the display label of a booking tier, or "" if unknown.
func HoursLabel(hours float64) string {
	for _, t := range BookingTiers {
		if t.Hours == hours {
			return t.Label
		}
	}
	return ""
}

func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentCard, PaymentCash, PaymentBankTransfer:
		return true
	}
	return false
}

// TaxRate returns the tax percentage applied to a payment method.
func TaxRate(method string) decimal.Decimal {
	switch method {
	case PaymentCard:
		return decimal.NewFromInt(8)
	case PaymentCash, PaymentBankTransfer:
		return decimal.NewFromInt(15)
	default:
		return decimal.Zero
	}
}

var hundred = decimal.NewFromInt(100)

// Totals are raw values; only Display rounds.
type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxRate    decimal.Decimal `json:"taxRate"`
	TaxAmount  decimal.Decimal `json:"taxAmount"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

type DisplayTotals struct {
	Subtotal   string
	TaxRate    string
	TaxAmount  string
	GrandTotal string
}

func ComputeTotals(subtotal decimal.Decimal, method string) Totals {
	rate := TaxRate(method)
	tax := subtotal.Mul(rate).Div(hundred)
	return Totals{
		Subtotal:   subtotal,
		TaxRate:    rate,
		TaxAmount:  tax,
		GrandTotal: subtotal.Add(tax),
	}
}

func (t Totals) Display() DisplayTotals {
	return DisplayTotals{
		Subtotal:   t.Subtotal.StringFixed(2),
		TaxRate:    t.TaxRate.StringFixed(2),
		TaxAmount:  t.TaxAmount.StringFixed(2),
		GrandTotal: t.GrandTotal.StringFixed(2),
	}
}

// BookingTotal = hourlyRate * hours.
func BookingTotal(hourlyRate decimal.Decimal, hours float64) decimal.Decimal {
	return hourlyRate.Mul(decimal.NewFromFloat(hours))
}

// TierDuration converts a price tier into play time, free minutes included.
func TierDuration(p models.CategoryPrice) time.Duration {
	unit := time.Hour
	if p.Unit == models.UnitMinutes {
		unit = time.Minute
	}
	d := time.Duration(p.Duration * float64(unit))
	return d + time.Duration(p.FreeMins)*time.Minute
}

// HoursDuration converts fractional booking hours to a time.Duration.
func HoursDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}

// DurationLabel formats a tier duration, e.g. "1 hour 30 minutes".
func DurationLabel(d time.Duration) string {
	total := int(d.Round(time.Minute).Minutes())
	h, m := total/60, total%60
	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s", unit)
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}
	switch {
	case h == 0:
		return plural(m, "minute")
	case m == 0:
		return plural(h, "hour")
	default:
		return plural(h, "hour") + " " + plural(m, "minute")
	}
}
