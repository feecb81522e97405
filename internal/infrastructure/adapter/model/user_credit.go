package model

import (
	"time"
)

// UserCredit is the per-user analysis credit ledger row
type UserCredit struct {
	ID                uint64    `gorm:"primaryKey"`
	UserID            uint64    `gorm:"not null;uniqueIndex"`
	RemainingAnalyses int       `gorm:"not null;default:0"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName specifies the table name for UserCredit
func (UserCredit) TableName() string {
	return "user_credits"
}
