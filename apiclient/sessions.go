package apiclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/yeremiapane/venue-app/flows"
	"github.com/yeremiapane/venue-app/models"
)

var ErrEmptySession = errors.New("response has no session")

func (c *Client) session(ctx context.Context, path string, body interface{}) (*models.TableSession, error) {
	var s *models.TableSession
	if err := c.do(ctx, http.MethodPost, path, nil, body, &s); err != nil {
		return nil, err
	}
	if s == nil || s.UUID == "" {
		return nil, ErrEmptySession
	}
	return s, nil
}

func (c *Client) BookSession(ctx context.Context, req flows.BookRequest) (*models.TableSession, error) {
	return c.session(ctx, "/api/sessions/book", req)
}

func (c *Client) StartSession(ctx context.Context, req flows.StartRequest) (*models.TableSession, error) {
	return c.session(ctx, "/api/sessions/start", req)
}

func (c *Client) RechargeSession(ctx context.Context, req flows.RechargeRequest) (*models.TableSession, error) {
	return c.session(ctx, "/api/sessions/recharge", req)
}

func (c *Client) StopSession(ctx context.Context, req flows.StopRequest) error {
	return c.do(ctx, http.MethodPost, "/api/sessions/stop", nil, req, nil)
}
