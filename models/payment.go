package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PaymentKindBooking  = "booking"
	PaymentKindRecharge = "recharge"
)

// Payment mencatat pembayaran booking atau recharge untuk satu sesi meja
type Payment struct {
	UUID              string          `gorm:"primaryKey;type:varchar(36)" json:"uuid"`
	TableSessionUUID  string          `gorm:"type:varchar(36);index;not null" json:"tableSessionUuid"`
	CategoryPriceUUID *string         `gorm:"type:varchar(36)" json:"categoryPriceUuid,omitempty"`
	Kind              string          `gorm:"type:varchar(20);not null" json:"kind"`
	PaymentMethod     string          `gorm:"type:varchar(20);not null" json:"paymentMethod"`
	Subtotal          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxRate           decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"taxRate"`
	TaxAmount         decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0" json:"taxAmount"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"totalAmount"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.NewString()
	}
	return nil
}
