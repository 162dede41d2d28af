package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dish represents an orderable menu item. Dishes with IsAvailable=false
// are excluded from the menu, the cart view and order creation.
type Dish struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	Category    Category        `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category"`
	IsAvailable bool            `gorm:"not null" json:"is_available"`
	ImageS3Key  *string         `json:"image_s3_key"`                 // nullable, storage key for dish photo
	ImageURL    *string         `gorm:"-" json:"image_url,omitempty"` // computed field, presigned URL
	CreatedByID *uint           `gorm:"index" json:"created_by_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName specifies the table name for the Dish model
func (Dish) TableName() string {
	return "dishes"
}
