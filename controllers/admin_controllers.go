package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/venue-app/services"
	"github.com/yeremiapane/venue-app/utils"
	"gorm.io/gorm"
)

type AdminController struct {
	DB *gorm.DB
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{DB: db}
}

// GetDashboardStats mengambil counter meja dan pendapatan hari ini
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	companyUUID := c.Query("companyUuid")
	if companyUUID == "" {
		utils.RespondError(c, http.StatusBadRequest, errCompanyQuery)
		return
	}
	stats, err := services.GetDashboardStats(ac.DB.WithContext(c.Request.Context()), companyUUID, time.Now())
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", stats)
}
