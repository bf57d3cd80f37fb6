package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	UUID        string    `gorm:"primaryKey;type:varchar(36)" json:"uuid"`
	CompanyUUID string    `gorm:"type:varchar(36);index;not null" json:"companyUuid"`
	FirstName   string    `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName    string    `gorm:"type:varchar(100)" json:"lastName"`
	FullName    string    `gorm:"type:varchar(201);index" json:"fullName"`
	PhoneCode   string    `gorm:"type:varchar(6);not null" json:"phoneCode"`
	Phone       string    `gorm:"type:varchar(20);index;not null" json:"phone"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" json:"updatedAt"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == "" {
		c.UUID = uuid.NewString()
	}
	return nil
}

// BeforeSave menjaga FullName dan format nomor telepon tetap konsisten.
func (c *Customer) BeforeSave(tx *gorm.DB) error {
	c.FullName = JoinName(c.FirstName, c.LastName)
	c.PhoneCode = NormalizePhoneCode(c.PhoneCode)
	c.Phone = NormalizePhone(c.Phone)
	return nil
}

// FullPhone returns the E.164 style number, e.g. "+628123456789".
func (c Customer) FullPhone() string {
	return c.PhoneCode + c.Phone
}

// Label is the text shown in the customer picker.
func (c Customer) Label() string {
	return CustomerLabel(c.FullName, c.PhoneCode, c.Phone)
}

func CustomerLabel(fullName, phoneCode, phone string) string {
	if phone == "" {
		return fullName
	}
	return fullName + " (" + phoneCode + phone + ")"
}

func JoinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// NormalizePhone strips spaces, dashes and local leading zeros.
func NormalizePhone(phone string) string {
	phone = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
	return strings.TrimLeft(phone, "0")
}

func NormalizePhoneCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return code
	}
	if !strings.HasPrefix(code, "+") {
		code = "+" + code
	}
	return code
}
