package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SessionStatusBooked    = "BOOKED"
	SessionStatusActive    = "ACTIVE"
	SessionStatusCompleted = "COMPLETED"
	SessionStatusCancelled = "CANCELLED"
)

// NonTerminalStatuses dipakai untuk mencari sesi yang masih berjalan di sebuah meja.
var NonTerminalStatuses = []string{SessionStatusBooked, SessionStatusActive}

// TableSession mencatat satu kali pemakaian meja.
//
// StartTime is the instant the countdown runs to: for an ACTIVE session it is
// the moment the purchased time runs out. StartedAt is when the session began.
type TableSession struct {
	UUID         string     `gorm:"primaryKey;type:varchar(36)" json:"uuid"`
	TableUUID    string     `gorm:"type:varchar(36);index;not null" json:"tableUuid"`
	CustomerUUID string     `gorm:"type:varchar(36);index" json:"customerUuid"`
	Status       string     `gorm:"type:varchar(20);not null;default:'BOOKED'" json:"status"`
	StartTime    *time.Time `json:"startTime"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	EndTime      *time.Time `json:"endTime"`
	Duration     float64    `gorm:"not null;default:0" json:"duration"`
	Unit         string     `gorm:"type:varchar(10);not null;default:'hours'" json:"unit"`
	CreatedAt    time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updatedAt"`
}

func (s *TableSession) BeforeCreate(tx *gorm.DB) error {
	if s.UUID == "" {
		s.UUID = uuid.NewString()
	}
	return nil
}

// IsTerminal reports whether the session can no longer change.
func (s *TableSession) IsTerminal() bool {
	return s.Status == SessionStatusCompleted || s.Status == SessionStatusCancelled
}

func (s *TableSession) IsActive() bool {
	return s != nil && s.Status == SessionStatusActive
}
