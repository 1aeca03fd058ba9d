package models

// Product is a marketplace listing offered by a farmer or agro-business.
type Product struct {
	BaseModel

	UserID string `gorm:"type:uuid;index;not null" json:"user_id"`

	Name        string  `gorm:"not null" json:"name"`
	Category    string  `gorm:"type:varchar(64);index" json:"category"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"not null" json:"price"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `gorm:"type:varchar(32)" json:"unit"`

	IsAvailable bool `gorm:"default:true" json:"is_available"`
}
