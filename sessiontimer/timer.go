// Package sessiontimer renders the live countdown shown on a table card.
package sessiontimer

import (
	"fmt"
	"sync"
	"time"

	"github.com/yeremiapane/venue-app/models"
)

const Zero = "00:00:00"

// Ticker is the part of time.Ticker the timer needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

type Config struct {
	Interval  time.Duration
	Now       func() time.Time
	NewTicker func(d time.Duration) Ticker
	// OnChange is called with every new display text, outside the timer lock.
	OnChange func(text string)
}

type Timer struct {
	cfg Config

	mu      sync.Mutex
	text    string
	session *models.TableSession
	ticker  Ticker
	done    chan struct{}
}

func New(cfg Config) *Timer {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = func(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }
	}
	return &Timer{cfg: cfg, text: Zero}
}

// Format renders d as HH:MM:SS. Hours are not capped at 24.
func Format(d time.Duration) string {
	if d <= 0 {
		return Zero
	}
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Remaining returns the countdown text for session at now and whether the
// countdown is still running.
func Remaining(session *models.TableSession, now time.Time) (string, bool) {
	if !session.IsActive() || session.StartTime == nil {
		return Zero, false
	}
	diff := session.StartTime.Sub(now)
	if diff <= 0 {
		return Zero, false
	}
	return Format(diff), true
}

func (t *Timer) Text() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.text
}

// SetSession switches the timer to a new session. The previous ticker is
// always stopped first so it can never tick against a stale session.
func (t *Timer) SetSession(session *models.TableSession) {
	t.mu.Lock()
	t.stopLocked()
	t.session = session

	text, running := Remaining(session, t.cfg.Now())
	changed := t.setTextLocked(text)
	if running {
		ticker := t.cfg.NewTicker(t.cfg.Interval)
		done := make(chan struct{})
		t.ticker = ticker
		t.done = done
		go t.run(session, ticker, done)
	}
	t.mu.Unlock()

	t.notify(text, changed)
}

func (t *Timer) run(session *models.TableSession, ticker Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C():
			if !t.tick(session, ticker, now) {
				return
			}
		}
	}
}

// tick returns false once the countdown is over or the session changed.
func (t *Timer) tick(session *models.TableSession, ticker Ticker, _ time.Time) bool {
	t.mu.Lock()
	if t.session != session || t.ticker != ticker {
		t.mu.Unlock()
		return false
	}
	text, running := Remaining(session, t.cfg.Now())
	changed := t.setTextLocked(text)
	if !running {
		t.stopLocked()
	}
	t.mu.Unlock()

	t.notify(text, changed)
	return running
}

// Stop tears the timer down; the display keeps its last text.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ticker != nil
}

func (t *Timer) stopLocked() {
	if t.ticker != nil {
		t.ticker.Stop()
		t.ticker = nil
	}
	if t.done != nil {
		close(t.done)
		t.done = nil
	}
}

func (t *Timer) setTextLocked(text string) bool {
	changed := text != t.text
	t.text = text
	return changed
}

func (t *Timer) notify(text string, changed bool) {
	if changed && t.cfg.OnChange != nil {
		t.cfg.OnChange(text)
	}
}
