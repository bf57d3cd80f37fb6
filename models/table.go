package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TableStatusAvailable = "available"
	TableStatusBooked    = "booked"
	TableStatusOccupied  = "occupied"
)

type Table struct {
	UUID           string        `gorm:"primaryKey;type:varchar(36)" json:"uuid"`
	CompanyUUID    string        `gorm:"type:varchar(36);index;not null" json:"companyUuid"`
	Name           string        `gorm:"type:varchar(50);not null" json:"name"`
	CategoryUUID   string        `gorm:"type:varchar(36);index;not null" json:"categoryUuid"`
	Category       Category      `gorm:"foreignKey:CategoryUUID;references:UUID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category"`
	Status         string        `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	CurrentSession *TableSession `gorm:"foreignKey:TableUUID;references:UUID" json:"currentSession"`
	CreatedAt      time.Time     `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time     `gorm:"not null" json:"updatedAt"`
}

func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.UUID == "" {
		t.UUID = uuid.NewString()
	}
	return nil
}
