package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/yeremiapane/venue-app/models"
)

// ListTables returns the company's tables with category and current session.
func (c *Client) ListTables(ctx context.Context, companyUUID string) ([]models.Table, error) {
	q := url.Values{}
	q.Set("companyUuid", companyUUID)

	var tables []models.Table
	if err := c.do(ctx, http.MethodGet, "/api/tables", q, nil, &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

// TablePrices returns the price tiers of the table's category.
func (c *Client) TablePrices(ctx context.Context, tableUUID string) ([]models.CategoryPrice, error) {
	var prices []models.CategoryPrice
	if err := c.do(ctx, http.MethodGet, "/api/tables/"+url.PathEscape(tableUUID)+"/prices", nil, nil, &prices); err != nil {
		return nil, err
	}
	return prices, nil
}
