package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category menentukan harga per jam sebuah meja dan daftar tier durasi.
type Category struct {
	UUID         string          `gorm:"primaryKey;type:varchar(36)" json:"uuid"`
	CompanyUUID  string          `gorm:"type:varchar(36);index;not null" json:"companyUuid"`
	Name         string          `gorm:"type:varchar(100);not null" json:"name"`
	HourlyRate   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"hourlyRate"`
	CurrencyName string          `gorm:"type:varchar(10);not null;default:'IDR'" json:"currencyName"`
	Prices       []CategoryPrice `gorm:"foreignKey:CategoryUUID;references:UUID" json:"prices,omitempty"`
	CreatedAt    time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updatedAt"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == "" {
		c.UUID = uuid.NewString()
	}
	return nil
}
