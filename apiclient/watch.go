package apiclient

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/yeremiapane/venue-app/flows"
	"github.com/yeremiapane/venue-app/kds"
)

type hubMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (c *Client) wsURL(companyUUID string) (string, error) {
	u, err := url.Parse(c.baseURL + "/api/ws/sessions")
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	if companyUUID != "" {
		q := u.Query()
		q.Set("companyUuid", companyUUID)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// WatchSessions applies session_update events from the backend hub to cache
// until ctx is done or the connection drops.
func (c *Client) WatchSessions(ctx context.Context, companyUUID string, cache flows.SessionUpdater) error {
	target, err := c.wsURL(companyUUID)
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
				strings.Contains(err.Error(), "use of closed network connection") {
				return nil
			}
			return err
		}

		var msg hubMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.WithError(err).Warn("invalid hub message")
			continue
		}
		if msg.Event != kds.EventSessionUpdate {
			continue
		}
		var update kds.SessionUpdate
		if err := json.Unmarshal(msg.Data, &update); err != nil || update.TableUUID == "" {
			c.log.WithField("data", string(msg.Data)).Warn("invalid session update")
			continue
		}
		cache.UpdateSession(update.TableUUID, update.Session)
	}
}
