package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/venue-app/services"
	"github.com/yeremiapane/venue-app/utils"
)

type CustomerController struct {
	Customers *services.CustomerService
}

func NewCustomerController(customers *services.CustomerService) *CustomerController {
	return &CustomerController{Customers: customers}
}

// SearchCustomers -> GET /customers/search?companyUuid=&searchText=
func (cc *CustomerController) SearchCustomers(c *gin.Context) {
	customers, err := cc.Customers.Search(c.Request.Context(), c.Query("companyUuid"), c.Query("searchText"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of customers", customers)
}

// CreateCustomer -> customer baru dari kasir
func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	var req struct {
		CompanyUUID string `json:"companyUuid" binding:"required"`
		FirstName   string `json:"firstName" binding:"required"`
		LastName    string `json:"lastName"`
		PhoneCode   string `json:"phoneCode"`
		Phone       string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	customer, err := cc.Customers.Create(c.Request.Context(), services.CreateCustomerInput{
		CompanyUUID: req.CompanyUUID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneCode:   req.PhoneCode,
		Phone:       req.Phone,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Infof("Customer created: %s", customer.Label())
	utils.RespondJSON(c, http.StatusCreated, "Customer created successfully", customer)
}
