package entity

import (
	"strings"
	"time"

	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	coreport "github.com/cvmatch/cvmatch-backend/internal/domain/port/core"
)

// User represents an account that can purchase and spend analysis credits.
// PasswordHash is empty for accounts provisioned through Google OAuth.
type User struct {
	ID               uint64
	Email            string
	Name             string
	PasswordHash     string
	GoogleID         string
	IsActive         bool
	EmailVerified    bool
	StripeCustomerID string

	VerificationToken   string
	VerificationExpires *time.Time
	ResetToken          string
	ResetExpires        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser creates a new user with the given email and display name
func NewUser(email, name string, timeProvider coreport.TimeProvider) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errs.ErrInvalidRequest
	}

	now := timeProvider.Now()
	return &User{
		Email:     email,
		Name:      strings.TrimSpace(name),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsOAuthOnly reports whether the account has no local password
func (u *User) IsOAuthOnly() bool {
	return u.PasswordHash == "" && u.GoogleID != ""
}

// StartEmailVerification attaches a verification token valid for the given period
func (u *User) StartEmailVerification(token string, ttl time.Duration, timeProvider coreport.TimeProvider) {
	expires := timeProvider.Now().Add(ttl)
	u.VerificationToken = token
	u.VerificationExpires = &expires
	u.UpdatedAt = timeProvider.Now()
}

// ConfirmEmail validates the verification token and marks the email verified
func (u *User) ConfirmEmail(token string, timeProvider coreport.TimeProvider) error {
	if u.VerificationToken == "" || token != u.VerificationToken {
		return errs.ErrTokenInvalid
	}
	if u.VerificationExpires == nil || timeProvider.Now().After(*u.VerificationExpires) {
		return errs.ErrTokenExpired
	}
	u.EmailVerified = true
	u.VerificationToken = ""
	u.VerificationExpires = nil
	u.UpdatedAt = timeProvider.Now()
	return nil
}

// StartPasswordReset attaches a reset token valid for the given period
func (u *User) StartPasswordReset(token string, ttl time.Duration, timeProvider coreport.TimeProvider) {
	expires := timeProvider.Now().Add(ttl)
	u.ResetToken = token
	u.ResetExpires = &expires
	u.UpdatedAt = timeProvider.Now()
}

// CompletePasswordReset validates the reset token and installs the new hash.
// The token is single-use: it is cleared on success.
func (u *User) CompletePasswordReset(token, newHash string, timeProvider coreport.TimeProvider) error {
	if u.ResetToken == "" || token != u.ResetToken {
		return errs.ErrTokenInvalid
	}
	if u.ResetExpires == nil || timeProvider.Now().After(*u.ResetExpires) {
		return errs.ErrTokenExpired
	}
	u.PasswordHash = newHash
	u.ResetToken = ""
	u.ResetExpires = nil
	u.UpdatedAt = timeProvider.Now()
	return nil
}

// Rename updates the display name
func (u *User) Rename(name string, timeProvider coreport.TimeProvider) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.ErrInvalidRequest
	}
	u.Name = name
	u.UpdatedAt = timeProvider.Now()
	return nil
}
