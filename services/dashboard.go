package services

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/venue-app/models"
	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalTables     int64           `json:"totalTables"`
	AvailableTables int64           `json:"availableTables"`
	BookedTables    int64           `json:"bookedTables"`
	OccupiedTables  int64           `json:"occupiedTables"`
	ActiveSessions  int64           `json:"activeSessions"`
	BookedSessions  int64           `json:"bookedSessions"`
	RevenueToday    decimal.Decimal `json:"revenueToday"`
}

// GetDashboardStats menghitung counter meja dan pendapatan hari ini per company
func GetDashboardStats(db *gorm.DB, companyUUID string, now time.Time) (DashboardStats, error) {
	var stats DashboardStats

	tables := func() *gorm.DB {
		q := db.Model(&models.Table{})
		if companyUUID != "" {
			q = q.Where("company_uuid = ?", companyUUID)
		}
		return q
	}
	if err := tables().Count(&stats.TotalTables).Error; err != nil {
		return stats, err
	}
	if err := tables().Where("status = ?", models.TableStatusAvailable).Count(&stats.AvailableTables).Error; err != nil {
		return stats, err
	}
	if err := tables().Where("status = ?", models.TableStatusBooked).Count(&stats.BookedTables).Error; err != nil {
		return stats, err
	}
	if err := tables().Where("status = ?", models.TableStatusOccupied).Count(&stats.OccupiedTables).Error; err != nil {
		return stats, err
	}

	sessions := func(status string) *gorm.DB {
		q := db.Model(&models.TableSession{}).Where("table_sessions.status = ?", status)
		if companyUUID != "" {
			q = q.Joins("JOIN tables ON tables.uuid = table_sessions.table_uuid").
				Where("tables.company_uuid = ?", companyUUID)
		}
		return q
	}
	if err := sessions(models.SessionStatusActive).Count(&stats.ActiveSessions).Error; err != nil {
		return stats, err
	}
	if err := sessions(models.SessionStatusBooked).Count(&stats.BookedSessions).Error; err != nil {
		return stats, err
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	q := db.Model(&models.Payment{}).Where("payments.created_at >= ?", startOfDay)
	if companyUUID != "" {
		q = q.Joins("JOIN table_sessions ON table_sessions.uuid = payments.table_session_uuid").
			Joins("JOIN tables ON tables.uuid = table_sessions.table_uuid").
			Where("tables.company_uuid = ?", companyUUID)
	}
	var totals []decimal.Decimal
	if err := q.Pluck("payments.total_amount", &totals).Error; err != nil {
		return stats, err
	}
	stats.RevenueToday = decimal.Zero
	for _, t := range totals {
		stats.RevenueToday = stats.RevenueToday.Add(t)
	}
	return stats, nil
}
