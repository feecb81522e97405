package entity

import (
	"time"

	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	coreport "github.com/cvmatch/cvmatch-backend/internal/domain/port/core"
)

// CreditPackageSize is the number of analyses granted per completed checkout
const CreditPackageSize = 4

// CreditLedger tracks the remaining paid analyses of a single user.
// There is at most one ledger row per user.
type CreditLedger struct {
	UserID    uint64
	Remaining int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCreditLedger creates an empty ledger for the given user
func NewCreditLedger(userID uint64, timeProvider coreport.TimeProvider) *CreditLedger {
	now := timeProvider.Now()
	return &CreditLedger{
		UserID:    userID,
		Remaining: 0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasCredit reports whether at least one analysis remains
func (l *CreditLedger) HasCredit() bool {
	return l.Remaining >= 1
}

// Debit consumes one analysis credit
func (l *CreditLedger) Debit(timeProvider coreport.TimeProvider) error {
	if l.Remaining < 1 {
		return &errs.CreditError{UserID: l.UserID, Remaining: l.Remaining, Err: errs.ErrInsufficientCredits}
	}
	l.Remaining--
	l.UpdatedAt = timeProvider.Now()
	return nil
}

// Credit adds the given number of analyses to the ledger
func (l *CreditLedger) Credit(amount int, timeProvider coreport.TimeProvider) error {
	if amount <= 0 {
		return errs.ErrInvalidRequest
	}
	l.Remaining += amount
	l.UpdatedAt = timeProvider.Now()
	return nil
}
