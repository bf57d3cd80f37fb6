package services

import (
	"context"
	"sync"
	"time"

	"github.com/yeremiapane/venue-app/utils"
)

// BookingExpiryMonitor membatalkan booking yang tidak pernah dimulai
type BookingExpiryMonitor struct {
	Sessions *SessionService
	TTL      time.Duration
	Interval time.Duration

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewBookingExpiryMonitor(sessions *SessionService, ttl time.Duration) *BookingExpiryMonitor {
	return &BookingExpiryMonitor{
		Sessions: sessions,
		TTL:      ttl,
		Interval: time.Minute,
		stopChan: make(chan struct{}),
	}
}

func (m *BookingExpiryMonitor) Start() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.Interval)
		defer ticker.Stop()

		utils.InfoLogger.Infof("Booking expiry monitor started (ttl=%s)", m.TTL)
		for {
			select {
			case <-ticker.C:
				m.RunOnce(context.Background())
			case <-m.stopChan:
				return
			}
		}
	}()
}

// RunOnce menjalankan satu putaran pengecekan
func (m *BookingExpiryMonitor) RunOnce(ctx context.Context) int {
	n, err := m.Sessions.ExpireBookings(ctx, m.TTL)
	if err != nil {
		utils.ErrorLogger.Errorf("Error checking expired bookings: %v", err)
		return 0
	}
	if n > 0 {
		utils.InfoLogger.Infof("%d bookings expired", n)
	}
	return n
}

func (m *BookingExpiryMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
	m.wg.Wait()
}
