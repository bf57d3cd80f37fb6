package sessiontimer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/venue-app/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeTicker) Stopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

type tickerFactory struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (tf *tickerFactory) New(time.Duration) Ticker {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	ft := &fakeTicker{ch: make(chan time.Time, 1)}
	tf.tickers = append(tf.tickers, ft)
	return ft
}

func (tf *tickerFactory) Count() int {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	return len(tf.tickers)
}

func (tf *tickerFactory) Get(i int) *fakeTicker {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	return tf.tickers[i]
}

func newTestTimer() (*Timer, *fakeClock, *tickerFactory) {
	clock := &fakeClock{now: time.Date(2026, 10, 14, 20, 0, 0, 0, time.UTC)}
	factory := &tickerFactory{}
	timer := New(Config{Now: clock.Now, NewTicker: factory.New})
	return timer, clock, factory
}

func activeSession(start time.Time) *models.TableSession {
	return &models.TableSession{UUID: "s-1", Status: models.SessionStatusActive, StartTime: &start}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-5 * time.Second, "00:00:00"},
		{90 * time.Second, "00:01:30"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{100*time.Hour + 5*time.Second, "100:00:05"},
		{1500 * time.Millisecond, "00:00:01"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.in))
		})
	}
}

func TestCountdownTicksDownToZero(t *testing.T) {
	timer, clock, factory := newTestTimer()
	defer timer.Stop()

	timer.SetSession(activeSession(clock.Now().Add(90 * time.Second)))
	assert.Equal(t, "00:01:30", timer.Text())
	require.Equal(t, 1, factory.Count())
	ticker := factory.Get(0)

	clock.Advance(time.Second)
	ticker.ch <- clock.Now()
	assert.Eventually(t, func() bool { return timer.Text() == "00:01:29" }, time.Second, time.Millisecond)

	clock.Advance(time.Second)
	ticker.ch <- clock.Now()
	assert.Eventually(t, func() bool { return timer.Text() == "00:01:28" }, time.Second, time.Millisecond)

	clock.Advance(2 * time.Minute)
	ticker.ch <- clock.Now()
	assert.Eventually(t, func() bool { return !timer.Running() }, time.Second, time.Millisecond)
	assert.Equal(t, Zero, timer.Text())
	assert.True(t, ticker.Stopped())

	// habis waktunya, tidak boleh mulai lagi
	clock.Advance(time.Hour)
	assert.Equal(t, Zero, timer.Text())
	assert.Equal(t, 1, factory.Count())
}

func TestZeroForInactiveOrMissingSession(t *testing.T) {
	timer, clock, factory := newTestTimer()
	future := clock.Now().Add(time.Hour)

	sessions := []*models.TableSession{
		nil,
		{Status: models.SessionStatusBooked, StartTime: &future},
		{Status: models.SessionStatusCompleted, StartTime: &future},
		{Status: models.SessionStatusCancelled},
		{Status: models.SessionStatusActive},
	}

	for _, s := range sessions {
		timer.SetSession(s)
		assert.Equal(t, Zero, timer.Text())
		assert.False(t, timer.Running())
	}
	assert.Equal(t, 0, factory.Count())
}

func TestExpiredActiveSessionShowsZero(t *testing.T) {
	timer, clock, factory := newTestTimer()

	timer.SetSession(activeSession(clock.Now().Add(-time.Minute)))
	assert.Equal(t, Zero, timer.Text())
	assert.Equal(t, 0, factory.Count())
}

func TestChangingSessionStopsPreviousTicker(t *testing.T) {
	timer, clock, factory := newTestTimer()
	defer timer.Stop()

	timer.SetSession(activeSession(clock.Now().Add(time.Hour)))
	first := factory.Get(0)

	timer.SetSession(activeSession(clock.Now().Add(10 * time.Second)))
	assert.True(t, first.Stopped())
	assert.Equal(t, "00:00:10", timer.Text())

	timer.SetSession(nil)
	assert.True(t, factory.Get(1).Stopped())
	assert.Equal(t, Zero, timer.Text())
}

func TestStopTearsDownTicker(t *testing.T) {
	timer, clock, factory := newTestTimer()

	timer.SetSession(activeSession(clock.Now().Add(time.Minute)))
	timer.Stop()

	assert.True(t, factory.Get(0).Stopped())
	assert.False(t, timer.Running())
}

func TestOnChangeReceivesTexts(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 14, 20, 0, 0, 0, time.UTC)}
	factory := &tickerFactory{}

	var mu sync.Mutex
	var texts []string
	timer := New(Config{Now: clock.Now, NewTicker: factory.New, OnChange: func(text string) {
		mu.Lock()
		defer mu.Unlock()
		texts = append(texts, text)
	}})
	defer timer.Stop()

	timer.SetSession(activeSession(clock.Now().Add(2 * time.Second)))
	clock.Advance(2 * time.Second)
	factory.Get(0).ch <- clock.Now()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(texts) == 2
	}, time.Second, time.Millisecond)
	mu.Lock()
	assert.Equal(t, []string{"00:00:02", Zero}, texts)
	mu.Unlock()
}
