package models

import "time"

// Account types supported by the platform.
const (
	AccountTypeFarmer       = "farmer"
	AccountTypeAgroBusiness = "agro-business"
)

// User describes a platform account, either an individual farmer or an agro-business.
type User struct {
	BaseModel

	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	AccountType string `gorm:"type:varchar(32);default:'farmer'" json:"account_type"`
	Phone       string `json:"phone"`
	Location    string `json:"location"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	LastLoginAt *time.Time `json:"last_login_at"`

	Crops    []Crop    `gorm:"foreignKey:UserID" json:"-"`
	Expenses []Expense `gorm:"foreignKey:UserID" json:"-"`
	Alerts   []Alert   `gorm:"foreignKey:UserID" json:"-"`
}
