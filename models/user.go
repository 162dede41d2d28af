package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a canteen user (student, chef or administrator)
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Auth0ID     string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Username    string         `gorm:"uniqueIndex;not null" json:"username"`
	Email       string         `gorm:"uniqueIndex;not null" json:"email"`
	Role        Role           `gorm:"not null;default:'student'" json:"role"`
	Phone       string         `json:"phone"`
	AvatarS3Key *string        `json:"avatar_s3_key"`                 // nullable, S3 key for uploaded avatar
	AvatarURL   *string        `gorm:"-" json:"avatar_url,omitempty"` // computed field, presigned URL
	BirthDate   *time.Time     `json:"birth_date"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user is an administrator
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsStudent reports whether the user is a student
func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// IsChef reports whether the user is a chef
func (u *User) IsChef() bool {
	return u.Role == RoleChef
}
