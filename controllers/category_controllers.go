package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/venue-app/middlewares"
	"github.com/yeremiapane/venue-app/models"
	"github.com/yeremiapane/venue-app/utils"
	"gorm.io/gorm"
)

var errCategoryNotFound = errors.New("category not found")

type CategoryController struct {
	DB          *gorm.DB
	Redis       *redis.Client
	CachePrefix string
}

func NewCategoryController(db *gorm.DB, rdb *redis.Client, cachePrefix string) *CategoryController {
	return &CategoryController{DB: db, Redis: rdb, CachePrefix: cachePrefix}
}

// CreateCategory -> kategori meja dengan tarif per jam
func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var req struct {
		CompanyUUID  string           `json:"companyUuid" binding:"required"`
		Name         string           `json:"name" binding:"required"`
		HourlyRate   *decimal.Decimal `json:"hourlyRate"`
		CurrencyName string           `json:"currencyName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.HourlyRate == nil || req.HourlyRate.IsNegative() {
		utils.RespondError(c, http.StatusBadRequest, models.ErrNegativePrice)
		return
	}

	category := models.Category{
		CompanyUUID:  req.CompanyUUID,
		Name:         req.Name,
		HourlyRate:   *req.HourlyRate,
		CurrencyName: req.CurrencyName,
	}
	if category.CurrencyName == "" {
		category.CurrencyName = "IDR"
	}
	if err := cc.DB.Create(&category).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.InfoLogger.Infof("Category created: %s", category.Name)
	utils.RespondJSON(c, http.StatusCreated, "Category created successfully", category)
}

// GetCategories -> kategori company beserta tier harganya
func (cc *CategoryController) GetCategories(c *gin.Context) {
	companyUUID := c.Query("companyUuid")
	if companyUUID == "" {
		utils.RespondError(c, http.StatusBadRequest, errCompanyQuery)
		return
	}
	categories := make([]models.Category, 0)
	if err := cc.DB.Preload("Prices").Where("company_uuid = ?", companyUUID).
		Order("name ASC").Find(&categories).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of categories", categories)
}

// CreatePrice -> menambah tier recharge ke kategori
func (cc *CategoryController) CreatePrice(c *gin.Context) {
	var req struct {
		Duration     float64          `json:"duration" binding:"required"`
		Unit         string           `json:"unit"`
		Price        *decimal.Decimal `json:"price"`
		FreeMins     int              `json:"freeMins"`
		CurrencyName string           `json:"currencyName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var category models.Category
	if err := cc.DB.First(&category, "uuid = ?", c.Param("category_uuid")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = errCategoryNotFound
		}
		respondServiceError(c, err)
		return
	}

	price := models.CategoryPrice{
		CategoryUUID: category.UUID,
		Duration:     req.Duration,
		Unit:         req.Unit,
		FreeMins:     req.FreeMins,
		CurrencyName: req.CurrencyName,
	}
	if price.Unit == "" {
		price.Unit = models.UnitMinutes
	}
	if price.CurrencyName == "" {
		price.CurrencyName = category.CurrencyName
	}
	if req.Price == nil {
		price.Price = decimal.Zero
	} else {
		price.Price = *req.Price
	}
	if err := price.Validate(); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := cc.DB.Create(&price).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	// Daftar harga meja di-cache, buang supaya tier baru langsung terlihat
	if err := middlewares.InvalidateCache(c.Request.Context(), cc.Redis, cc.CachePrefix); err != nil {
		utils.ErrorLogger.Warnf("Failed to invalidate price cache: %v", err)
	}
	utils.RespondJSON(c, http.StatusCreated, "Category price created successfully", price)
}
