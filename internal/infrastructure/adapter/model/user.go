package model

import (
	"time"
)

// User represents the database model for accounts
type User struct {
	ID                  uint64    `gorm:"primaryKey"`
	Email               string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Name                string    `gorm:"type:varchar(255);not null"`
	PasswordHash        *string   `gorm:"type:varchar(255)"`
	GoogleID            *string   `gorm:"type:varchar(64);uniqueIndex"`
	IsActive            bool      `gorm:"not null;default:true"`
	EmailVerified       bool      `gorm:"not null;default:false"`
	StripeCustomerID    *string   `gorm:"type:varchar(64)"`
	VerificationToken   *string   `gorm:"type:varchar(64);index"`
	VerificationExpires *time.Time
	ResetToken          *string `gorm:"type:varchar(64);index"`
	ResetExpires        *time.Time
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
