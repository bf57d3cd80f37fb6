package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	UnitMinutes = "minutes"
	UnitHours   = "hours"
)

var (
	ErrInvalidDuration = errors.New("duration must be greater than zero")
	ErrInvalidUnit     = errors.New("unit must be minutes or hours")
	ErrNegativePrice   = errors.New("price must not be negative")
	ErrNegativeFree    = errors.New("free minutes must not be negative")
)

// CategoryPrice adalah tier durasi yang bisa dibeli untuk recharge sesi.
type CategoryPrice struct {
	UUID         string          `gorm:"primaryKey;type:varchar(36)" json:"uuid"`
	CategoryUUID string          `gorm:"type:varchar(36);index;not null" json:"categoryUuid"`
	Duration     float64         `gorm:"not null" json:"duration"`
	Unit         string          `gorm:"type:varchar(10);not null;default:'hours'" json:"unit"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	FreeMins     int             `gorm:"not null;default:0" json:"freeMins"`
	CurrencyName string          `gorm:"type:varchar(10);not null;default:'IDR'" json:"currencyName"`
	CreatedAt    time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updatedAt"`
}

// Validate checks the tier invariants: duration > 0, price >= 0, freeMins >= 0.
func (p CategoryPrice) Validate() error {
	if p.Duration <= 0 {
		return ErrInvalidDuration
	}
	if p.Unit != UnitMinutes && p.Unit != UnitHours {
		return ErrInvalidUnit
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.FreeMins < 0 {
		return ErrNegativeFree
	}
	return nil
}

func (p *CategoryPrice) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.NewString()
	}
	return p.Validate()
}
