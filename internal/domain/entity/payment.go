package entity

import (
	"time"

	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
)

// CheckoutSession represents a payment-provider checkout for one credit package
type CheckoutSession struct {
	ID          string
	URL         string
	CustomerRef string
	Paid        bool
}

// ProcessedPaymentSession is the idempotency record inserted once the credits
// for a checkout session have been granted. A session id can be granted at
// most once; the unique constraint on SessionID enforces it.
type ProcessedPaymentSession struct {
	SessionID      string
	UserID         uint64
	CreditsGranted int
	ProcessedAt    time.Time
}

// NewProcessedPaymentSession records the grant of a credit package
func NewProcessedPaymentSession(sessionID string, userID uint64, credits int, at time.Time) (*ProcessedPaymentSession, error) {
	if sessionID == "" || userID == 0 || credits <= 0 {
		return nil, errs.ErrInvalidRequest
	}
	return &ProcessedPaymentSession{
		SessionID:      sessionID,
		UserID:         userID,
		CreditsGranted: credits,
		ProcessedAt:    at,
	}, nil
}
