package flows

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/venue-app/models"
)

type ControlsConfig struct {
	CompanyUUID    string
	Sessions       SessionService
	Cache          SessionUpdater
	Notifier       Notifier
	Logger         logrus.FieldLogger
	RequestTimeout time.Duration
}

// SessionControls are the start and stop buttons of a table card.
type SessionControls struct {
	cfg      ControlsConfig
	log      logrus.FieldLogger
	notifier Notifier
}

func NewSessionControls(cfg ControlsConfig) *SessionControls {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	log := defaultLogger(cfg.Logger).WithField("flow", "controls")
	return &SessionControls{cfg: cfg, log: log, notifier: defaultNotifier(cfg.Notifier, log)}
}

// Start activates a BOOKED session and publishes it to the cache.
func (c *SessionControls) Start(ctx context.Context, tableUUID string, session *models.TableSession) error {
	if session == nil || session.Status != models.SessionStatusBooked {
		return ErrInvalidTransition
	}
	reqCtx, cancel := withTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	var started *models.TableSession
	err := callSafely(c.log, "start_session", func() error {
		var err error
		started, err = c.cfg.Sessions.StartSession(reqCtx, StartRequest{
			CompanyUUID:      c.cfg.CompanyUUID,
			TableSessionUUID: session.UUID,
		})
		if err == nil && started == nil {
			err = errMissingSessionInPayload
		}
		return err
	})
	if err != nil {
		c.log.WithError(err).WithField("session_uuid", session.UUID).Error("start session failed")
		c.notifier.NotifyError(userMessage(err, "Failed to start session"))
		return err
	}
	if c.cfg.Cache != nil {
		c.cfg.Cache.UpdateSession(tableUUID, started)
	}
	c.notifier.NotifySuccess("Session started")
	return nil
}

// Stop ends a session and clears the table's cache entry.
func (c *SessionControls) Stop(ctx context.Context, tableUUID string, session *models.TableSession) error {
	if session == nil || session.IsTerminal() {
		return ErrInvalidTransition
	}
	reqCtx, cancel := withTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	err := callSafely(c.log, "stop_session", func() error {
		return c.cfg.Sessions.StopSession(reqCtx, StopRequest{TableSessionID: session.UUID})
	})
	if err != nil {
		c.log.WithError(err).WithField("session_uuid", session.UUID).Error("stop session failed")
		c.notifier.NotifyError(userMessage(err, "Failed to stop session"))
		return err
	}
	if c.cfg.Cache != nil {
		c.cfg.Cache.UpdateSession(tableUUID, nil)
	}
	c.notifier.NotifySuccess("Session stopped")
	return nil
}
