package model

import (
	"time"
)

// ProcessedSession records a checkout session whose credits have been granted.
// The unique index on SessionID is what makes grants idempotent.
type ProcessedSession struct {
	ID             uint64    `gorm:"primaryKey"`
	SessionID      string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	UserID         uint64    `gorm:"not null;index"`
	CreditsGranted int       `gorm:"not null"`
	ProcessedAt    time.Time `gorm:"not null"`
}

// TableName specifies the table name for ProcessedSession
func (ProcessedSession) TableName() string {
	return "processed_sessions"
}
