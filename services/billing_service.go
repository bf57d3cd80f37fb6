package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/venue-app/billing"
	"github.com/yeremiapane/venue-app/models"
	"gorm.io/gorm"
)

type PreviewInput struct {
	CompanyUUID       string
	TableUUID         string
	Hours             *float64
	CategoryPriceUUID *string
}

type PreviewTable struct {
	UUID     string `json:"uuid"`
	Name     string `json:"name"`
	Category struct {
		UUID string `json:"uuid"`
		Name string `json:"name"`
	} `json:"category"`
}

type PreviewBilling struct {
	Hours         float64         `json:"hours"`
	DurationLabel string          `json:"durationLabel"`
	HourlyRate    decimal.Decimal `json:"hourlyRate"`
	CurrencyName  string          `json:"currencyName"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
}

type Preview struct {
	Table   PreviewTable   `json:"table"`
	Billing PreviewBilling `json:"billing"`
}

// BillingService menghitung preview biaya tanpa menyimpan apapun
type BillingService struct {
	db *gorm.DB
}

func NewBillingService(db *gorm.DB) *BillingService {
	return &BillingService{db: db}
}

// Preview: dengan Hours -> preview booking; dengan CategoryPriceUUID -> preview
// recharge untuk tier tersebut; tanpa keduanya -> snapshot meja dengan total nol.
func (s *BillingService) Preview(ctx context.Context, in PreviewInput) (*Preview, error) {
	if in.CompanyUUID == "" {
		return nil, ErrCompanyRequired
	}
	table, err := findTable(s.db.WithContext(ctx), in.CompanyUUID, in.TableUUID)
	if err != nil {
		return nil, err
	}

	out := &Preview{}
	out.Table.UUID = table.UUID
	out.Table.Name = table.Name
	out.Table.Category.UUID = table.Category.UUID
	out.Table.Category.Name = table.Category.Name
	out.Billing = PreviewBilling{
		HourlyRate:   table.Category.HourlyRate,
		CurrencyName: table.Category.CurrencyName,
		TotalAmount:  decimal.Zero,
	}

	switch {
	case in.Hours != nil:
		if !billing.ValidHours(*in.Hours) {
			return nil, ErrInvalidHours
		}
		out.Billing.Hours = *in.Hours
		out.Billing.DurationLabel = billing.HoursLabel(*in.Hours)
		out.Billing.TotalAmount = billing.BookingTotal(table.Category.HourlyRate, *in.Hours)
	case in.CategoryPriceUUID != nil && *in.CategoryPriceUUID != "":
		var price models.CategoryPrice
		err := s.db.WithContext(ctx).
			Where("uuid = ? AND category_uuid = ?", *in.CategoryPriceUUID, table.CategoryUUID).
			First(&price).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPriceNotFound
			}
			return nil, err
		}
		d := billing.TierDuration(price)
		out.Billing.Hours = d.Hours()
		out.Billing.DurationLabel = billing.DurationLabel(d)
		out.Billing.CurrencyName = price.CurrencyName
		out.Billing.TotalAmount = price.Price
	}
	return out, nil
}
