package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/venue-app/kds"
	"github.com/yeremiapane/venue-app/models"
	"github.com/yeremiapane/venue-app/services"
	"github.com/yeremiapane/venue-app/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TableController struct {
	DB  *gorm.DB
	Hub *kds.Hub
}

func NewTableController(db *gorm.DB, hub *kds.Hub) *TableController {
	return &TableController{DB: db, Hub: hub}
}

// CreateTable -> menambahkan meja baru ke sebuah kategori
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		CompanyUUID  string `json:"companyUuid" binding:"required"`
		Name         string `json:"name" binding:"required"`
		CategoryUUID string `json:"categoryUuid" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var category models.Category
	if err := tc.DB.Where("uuid = ? AND company_uuid = ?", req.CategoryUUID, req.CompanyUUID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = errCategoryNotFound
		}
		respondServiceError(c, err)
		return
	}

	table := models.Table{
		CompanyUUID:  req.CompanyUUID,
		Name:         req.Name,
		CategoryUUID: category.UUID,
		Status:       models.TableStatusAvailable,
	}
	if err := tc.DB.Omit(clause.Associations).Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	table.Category = category

	tc.Hub.BroadcastTableCreate(table)
	utils.InfoLogger.Infof("New table created: %s (category=%s)", table.Name, category.Name)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> daftar meja company beserta kategori dan sesi yang sedang berjalan
func (tc *TableController) GetAllTables(c *gin.Context) {
	companyUUID := c.Query("companyUuid")
	if companyUUID == "" {
		utils.RespondError(c, http.StatusBadRequest, errCompanyQuery)
		return
	}

	tables := make([]models.Table, 0)
	err := tc.DB.Preload("Category").
		Preload("CurrentSession", "status IN ?", models.NonTerminalStatuses).
		Where("company_uuid = ?", companyUUID).
		Order("name ASC").
		Find(&tables).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTablePrices -> tier harga dari kategori meja, untuk dialog recharge
func (tc *TableController) GetTablePrices(c *gin.Context) {
	var table models.Table
	if err := tc.DB.First(&table, "uuid = ?", c.Param("table_uuid")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = services.ErrTableNotFound
		}
		respondServiceError(c, err)
		return
	}

	prices := make([]models.CategoryPrice, 0)
	if err := tc.DB.Where("category_uuid = ?", table.CategoryUUID).
		Order("price ASC").Find(&prices).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of category prices", prices)
}
