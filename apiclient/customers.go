package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/yeremiapane/venue-app/models"
)

type CreateCustomerRequest struct {
	CompanyUUID string `json:"companyUuid"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneCode   string `json:"phoneCode"`
	Phone       string `json:"phone"`
}

func (c *Client) SearchCustomers(ctx context.Context, companyUUID, searchText string) ([]models.Customer, error) {
	q := url.Values{}
	q.Set("companyUuid", companyUUID)
	q.Set("searchText", searchText)

	var customers []models.Customer
	if err := c.do(ctx, http.MethodGet, "/api/customers/search", q, nil, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (c *Client) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*models.Customer, error) {
	var customer models.Customer
	if err := c.do(ctx, http.MethodPost, "/api/customers", nil, req, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}
