package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/venue-app/services"
	"github.com/yeremiapane/venue-app/utils"
)

var errMissingTotals = errors.New("taxRate, taxAmount and totalAmount are required")

type SessionController struct {
	Sessions *services.SessionService
}

func NewSessionController(sessions *services.SessionService) *SessionController {
	return &SessionController{Sessions: sessions}
}

// BookSession -> POST /sessions/book
func (sc *SessionController) BookSession(c *gin.Context) {
	var req struct {
		TableUUID     string  `json:"tableUuid" binding:"required"`
		CustomerUUID  string  `json:"customerUuid" binding:"required"`
		PaymentMethod string  `json:"paymentMethod" binding:"required"`
		Hours         float64 `json:"hours" binding:"required"`
		CompanyUUID   string  `json:"companyUuid" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := sc.Sessions.Book(c.Request.Context(), services.BookInput{
		CompanyUUID:   req.CompanyUUID,
		TableUUID:     req.TableUUID,
		CustomerUUID:  req.CustomerUUID,
		PaymentMethod: req.PaymentMethod,
		Hours:         req.Hours,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Session booked", session)
}

// StartSession -> POST /sessions/start
func (sc *SessionController) StartSession(c *gin.Context) {
	var req struct {
		CompanyUUID      string `json:"companyUuid" binding:"required"`
		TableSessionUUID string `json:"tableSessionUuid" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := sc.Sessions.Start(c.Request.Context(), req.CompanyUUID, req.TableSessionUUID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session started", session)
}

// RechargeSession -> POST /sessions/recharge
func (sc *SessionController) RechargeSession(c *gin.Context) {
	var req struct {
		TableSessionUUID  string           `json:"tableSessionUuid" binding:"required"`
		CategoryPriceUUID string           `json:"categoryPriceUuid" binding:"required"`
		PaymentMethod     string           `json:"paymentMethod" binding:"required"`
		CompanyUUID       string           `json:"companyUuid" binding:"required"`
		TaxRate           *decimal.Decimal `json:"taxRate"`
		TaxAmount         *decimal.Decimal `json:"taxAmount"`
		TotalAmount       *decimal.Decimal `json:"totalAmount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.TaxRate == nil || req.TaxAmount == nil || req.TotalAmount == nil {
		utils.RespondError(c, http.StatusBadRequest, errMissingTotals)
		return
	}

	session, err := sc.Sessions.Recharge(c.Request.Context(), services.RechargeInput{
		CompanyUUID:       req.CompanyUUID,
		TableSessionUUID:  req.TableSessionUUID,
		CategoryPriceUUID: req.CategoryPriceUUID,
		PaymentMethod:     req.PaymentMethod,
		TaxRate:           *req.TaxRate,
		TaxAmount:         *req.TaxAmount,
		TotalAmount:       *req.TotalAmount,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session recharged", session)
}

// StopSession -> POST /sessions/stop
func (sc *SessionController) StopSession(c *gin.Context) {
	var req struct {
		TableSessionID string `json:"tableSessionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := sc.Sessions.Stop(c.Request.Context(), req.TableSessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session stopped", session)
}
