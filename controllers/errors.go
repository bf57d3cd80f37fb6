package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/venue-app/models"
	"github.com/yeremiapane/venue-app/services"
	"github.com/yeremiapane/venue-app/utils"
)

var errCompanyQuery = errors.New("companyUuid query parameter is required")

// statusFor memetakan error service ke HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrTableNotFound),
		errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrCustomerNotFound),
		errors.Is(err, services.ErrPriceNotFound),
		errors.Is(err, errCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrTableBusy),
		errors.Is(err, services.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidHours),
		errors.Is(err, services.ErrInvalidPaymentMethod),
		errors.Is(err, services.ErrTaxMismatch),
		errors.Is(err, services.ErrCompanyRequired),
		errors.Is(err, services.ErrCustomerInvalid),
		errors.Is(err, models.ErrInvalidDuration),
		errors.Is(err, models.ErrInvalidUnit),
		errors.Is(err, models.ErrNegativePrice),
		errors.Is(err, models.ErrNegativeFree):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		utils.ErrorLogger.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	utils.RespondError(c, code, err)
}
