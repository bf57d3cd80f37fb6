package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yeremiapane/venue-app/models"
	"gorm.io/gorm"
)

const customerSearchLimit = 20

var ErrCustomerInvalid = errors.New("firstName and phone are required")

type CustomerService struct {
	db *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

// Search mencari customer berdasarkan nama atau nomor telepon. Nomor lokal
// berawalan 0 dicocokkan tanpa nol di depan karena phone disimpan tanpa itu.
func (s *CustomerService) Search(ctx context.Context, companyUUID, text string) ([]models.Customer, error) {
	if companyUUID == "" {
		return nil, ErrCompanyRequired
	}
	customers := make([]models.Customer, 0)
	text = strings.TrimSpace(text)
	if text == "" {
		return customers, nil
	}

	name := "%" + strings.ToLower(text) + "%"
	q := s.db.WithContext(ctx).Where("company_uuid = ?", companyUUID)
	cond := s.db.Where("LOWER(full_name) LIKE ?", name)
	if digits := models.NormalizePhone(strings.TrimPrefix(text, "+")); digits != "" && isDigits(digits) {
		cond = cond.Or("phone LIKE ?", "%"+digits+"%")
	}
	err := q.Where(cond).Order("full_name ASC").Limit(customerSearchLimit).Find(&customers).Error
	return customers, err
}

type CreateCustomerInput struct {
	CompanyUUID string
	FirstName   string
	LastName    string
	PhoneCode   string
	Phone       string
}

func (s *CustomerService) Create(ctx context.Context, in CreateCustomerInput) (*models.Customer, error) {
	if in.CompanyUUID == "" {
		return nil, ErrCompanyRequired
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.Phone) == "" {
		return nil, ErrCustomerInvalid
	}
	if in.PhoneCode == "" {
		in.PhoneCode = "+62"
	}
	customer := models.Customer{
		CompanyUUID: in.CompanyUUID,
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		PhoneCode:   in.PhoneCode,
		Phone:       in.Phone,
	}
	if err := s.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
