package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/venue-app/services"
	"github.com/yeremiapane/venue-app/utils"
)

type BillingController struct {
	Billing *services.BillingService
}

func NewBillingController(billing *services.BillingService) *BillingController {
	return &BillingController{Billing: billing}
}

// Preview -> estimasi biaya booking (hours) atau recharge (categoryPriceUuid)
func (bc *BillingController) Preview(c *gin.Context) {
	var req struct {
		CompanyUUID       string   `json:"companyUuid" binding:"required"`
		TableUUID         string   `json:"tableUuid" binding:"required"`
		Hours             *float64 `json:"hours"`
		CategoryPriceUUID *string  `json:"categoryPriceUuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	preview, err := bc.Billing.Preview(c.Request.Context(), services.PreviewInput{
		CompanyUUID:       req.CompanyUUID,
		TableUUID:         req.TableUUID,
		Hours:             req.Hours,
		CategoryPriceUUID: req.CategoryPriceUUID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Billing preview", preview)
}
