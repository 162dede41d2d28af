package models

// Category groups dishes on the menu
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
}

// TableName specifies the table name for the Category model
func (Category) TableName() string {
	return "categories"
}
